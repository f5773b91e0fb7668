//go:build onprem

package strategy

const onPremisesBuild = true
