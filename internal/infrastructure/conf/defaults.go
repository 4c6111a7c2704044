package conf

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// envConfPath is the env var name that overrides configuration directory when flag is absent.
	envConfPath = "CONF_PATH"
	// defaultServiceName is used when SERVICE_NAME is missing.
	defaultServiceName = "review"
	// defaultServiceVersion is used when SERVICE_VERSION is missing.
	defaultServiceVersion = "dev"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
	// defaultInstanceID is used when the hostname cannot be resolved.
	defaultInstanceID = "unknown"
	// defaultGRPCMetricsEnabled toggles RPC instrumentation when config omits explicit values.
	defaultGRPCMetricsEnabled = true
	// defaultGRPCIncludeHealth controls whether health check requests are exported by default.
	defaultGRPCIncludeHealth = false
)

func resolveServiceName(v string) string {
	if v == "" {
		return defaultServiceName
	}
	return v
}

func resolveServiceVersion(v string) string {
	if v == "" {
		return defaultServiceVersion
	}
	return v
}

func resolveEnvironment(v string) string {
	if v == "" {
		return defaultEnvironment
	}
	return v
}

func resolveInstanceID(v string) string {
	if v == "" {
		return defaultInstanceID
	}
	return v
}
