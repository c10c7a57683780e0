package constants

const (
	Version        = `0.1.0`
	ConfigFile     = `config`
	ConfigFileType = `yaml`
	ConfigDir      = `/.intake/`
	StoreFile      = `intake.db`
	EnvPrefix      = `intake`
)
