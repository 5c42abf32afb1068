package config

const (
	defaultFolder         = "Fetched_Images"
	defaultHashSize       = 8
	defaultThreshold      = 5
	defaultOnConflict     = "skip"
	defaultFetchTimeout   = 10
	defaultMaxBytes       = 20 << 20
	defaultLockTimeout    = 30
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultUserAgent      = "Mozilla/5.0 (compatible; go-imagegroup/1.0)"
	defaultMinImageWidth  = 0
	projectConfigFilename = "imagegroup.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Folder:             defaultFolder,
			LockTimeoutSeconds: defaultLockTimeout,
		},
		Grouping: Grouping{
			HashSize:   defaultHashSize,
			Threshold:  defaultThreshold,
			OnConflict: defaultOnConflict,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeout,
			MaxBytes:       defaultMaxBytes,
			MinImageWidth:  defaultMinImageWidth,
			UserAgent:      defaultUserAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
