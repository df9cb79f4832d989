package config

const (
	defaultDataDir             = "~/.local/share/prospect/data"
	defaultLogDir              = "~/.local/share/prospect/logs"
	defaultProviderName        = "places"
	defaultProviderBaseURL     = "https://places.googleapis.com/v1"
	defaultProviderLocale      = "en"
	defaultProviderTimeout     = 15
	defaultImageSearchTimeout  = 10
	defaultImageSearchResults  = 8
	defaultImageMinBytes       = 4096
	defaultImageCheckTimeout   = 5
	defaultImageCheckUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultCategoryRulesPath   = "~/.config/prospect/category_rules.toml"
	defaultTranslateTimeout    = 10
	defaultTranslateLanguage   = "en"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Provider: Provider{
			Name:           defaultProviderName,
			BaseURL:        defaultProviderBaseURL,
			Locale:         defaultProviderLocale,
			TimeoutSeconds: defaultProviderTimeout,
		},
		ImageSearch: ImageSearch{
			Enabled:        true,
			MaxResults:     defaultImageSearchResults,
			TimeoutSeconds: defaultImageSearchTimeout,
		},
		ImageValidation: ImageValidation{
			MinBytes:       defaultImageMinBytes,
			TimeoutSeconds: defaultImageCheckTimeout,
			UserAgent:      defaultImageCheckUserAgent,
		},
		Categories: Categories{
			RulesPath: defaultCategoryRulesPath,
		},
		Translate: Translate{
			TargetLanguage: defaultTranslateLanguage,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Runs:           true,
			Approvals:      true,
			Sweeps:         true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
