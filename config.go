package coursegen

import "github.com/goliatone/go-coursegen/internal/runtimeconfig"

var (
	ErrSourceRequired           = runtimeconfig.ErrSourceRequired
	ErrOutputIsSource           = runtimeconfig.ErrOutputIsSource
	ErrOutputContainsSource     = runtimeconfig.ErrOutputContainsSource
	ErrConverterUnknown         = runtimeconfig.ErrConverterUnknown
	ErrConverterCommandRequired = runtimeconfig.ErrConverterCommandRequired
	ErrConversionTimeoutInvalid = runtimeconfig.ErrConversionTimeoutInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

const (
	ConverterGoldmark = runtimeconfig.ConverterGoldmark
	ConverterExec     = runtimeconfig.ConverterExec
)

type (
	Config               = runtimeconfig.Config
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	ScanConfig           = runtimeconfig.ScanConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
