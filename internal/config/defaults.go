package config

const (
	LookupRedis    = "redis"
	LookupSQLite   = "sqlite"
	LookupPostgres = "postgres"

	ArtifactsFilesystem = "fs"
	ArtifactsS3         = "s3"
)

const (
	defaultResultsDir    = "~/.local/share/kncleanup/results"
	defaultLogDir        = "~/.local/share/kncleanup/logs"
	defaultLookupDBPath  = "~/.local/share/kncleanup/lookup.db"
	defaultRedisAddress  = "127.0.0.1:6379"
	defaultLookupTimeout = 10
	defaultLookupBatch   = 1000
	defaultTaxon         = "9606"
	defaultWorkers       = 2
	defaultS3Region      = "us-east-1"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	envPrefix            = "kncleanup"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ResultsDir:   defaultResultsDir,
			LogDir:       defaultLogDir,
			LookupDBPath: defaultLookupDBPath,
		},
		Lookup: Lookup{
			Backend:        LookupRedis,
			RedisAddress:   defaultRedisAddress,
			TimeoutSeconds: defaultLookupTimeout,
			BatchSize:      defaultLookupBatch,
		},
		Artifacts: Artifacts{
			Backend:  ArtifactsFilesystem,
			S3Region: defaultS3Region,
		},
		Pipeline: Pipeline{
			DefaultTaxon: defaultTaxon,
			Workers:      defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
