//go:build !onprem

package strategy

// onPremisesBuild is true in builds targeting on-premises server farms,
// where high-trust certificate authentication is available.
const onPremisesBuild = false
