package auth

import (
	"github.com/systmms/sitectl/internal/logging"
	"github.com/systmms/sitectl/internal/strategy"
)

// DefaultExchangers returns one exchanger per strategy kind, keyed for
// dispatch by the connection factory.
func DefaultExchangers(logger *logging.Logger) map[strategy.Kind]Exchanger {
	exchangers := []Exchanger{
		&CredentialExchanger{logger: logger},
		&CurrentUserExchanger{logger: logger},
		&ADFSExchanger{logger: logger},
		&AppTokenExchanger{logger: logger},
		&WebLoginExchanger{logger: logger},
		&NativeAppExchanger{logger: logger},
		&AppOnlyExchanger{logger: logger},
		&ManagementShellExchanger{logger: logger},
		&HighTrustExchanger{logger: logger},
	}

	byKind := make(map[strategy.Kind]Exchanger, len(exchangers))
	for _, exchanger := range exchangers {
		byKind[exchanger.Kind()] = exchanger
	}
	return byKind
}
