// Package config provides configuration loading, validation, environment
// variable merging, super-config modeling, and file watching for the
// SDK runtime.
//
// Configuration is loaded from JSON files, environment variables, or both,
// with struct-tag-based defaults and validation. The package also provides
// a file-watching mechanism for hot-reloading configuration at runtime.
//
// # Loading Configuration
//
// [Load] reads a JSON file and unmarshals it into a typed struct. Defaults
// from struct tags are applied to zero-valued fields the file leaves out,
// and the result is validated:
//
//	type AppConfig struct {
//	    Port    int    `json:"port" default:"8080" min:"1" max:"65535"`
//	    Host    string `json:"host" default:"localhost" required:"true"`
//	    Debug   bool   `json:"debug" default:"false"`
//	}
//
//	cfg, err := config.Load[AppConfig]("config.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// [LoadFromEnv] populates a config struct entirely from environment
// variables. Each exported field maps to PREFIX_FIELD_NAME, the Go field
// name in SCREAMING_SNAKE_CASE (BaseURL becomes ONESDK_BASE_URL):
//
//	cfg, err := config.LoadFromEnv[AppConfig]("ONESDK")
//	// reads ONESDK_PORT, ONESDK_HOST, ONESDK_DEBUG
//
// [MergeEnv] overlays environment variable values onto an existing config,
// only overriding fields with corresponding set variables:
//
//	config.MergeEnv(&cfg, "ONESDK")
//
// # Validation
//
// [Validate] checks a struct against its field tags:
//
//   - required:"true" — field must not be zero-valued
//   - min:"N" — numeric fields must be >= N
//   - max:"N" — numeric fields must be <= N
//
// Validation errors are returned as [*ValidationError] with the field name
// and descriptive message.
//
// # Super Configuration
//
// [SuperConfig] models the "super.json" shape a client loads at startup:
// named profiles, each with a provider priority order and per-use-case
// defaults (input, retry policy), plus the security schemes each provider
// declares. [ValidateSuperConfig] runs go-playground/validator struct-tag
// checks over it (every profile needs a non-empty priority list, every
// retryPolicy.kind must be "none" or "circuit-breaker"). [RetryPolicyConfig.Resolved]
// fills in the zero-valued fields with their documented defaults.
// [GetOption] retrieves a typed value from a use case's Input map:
//
//	timeout, ok := config.GetOption[float64](useCase.Input, "timeoutMs")
//
// [LoadSuperConfigViper] loads the same shape through viper from a config
// file found by name across a search path. It enables viper's AutomaticEnv
// with the ONESDK prefix but sets no key replacer, so underscore-separated
// variables such as ONESDK_PROFILES_ACME/CHAT_VERSION do not override the
// values nested under profiles and providers:
//
//	cfg, err := config.LoadSuperConfigViper("super", "/etc/onesdk")
//
// # File Watching
//
// [Watcher] wraps an fsnotify.Watcher to hot-reload a super.json on disk
// without a restart:
//
//	watcher, err := config.NewWatcher("super.json", func(cfg config.SuperConfig) {
//	    // swap in the freshly parsed config
//	}, nil)
//	defer watcher.Close()
//	go watcher.Run(ctx)
package config
