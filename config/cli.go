package config

// Cli holds every flag/env-configurable setting for the process. Kept as
// one explicit struct (not dynamic kwargs) per the "explicit update-struct
// builders" design note — every field here is a named, typed setting.
type Cli struct {
	HTTPAddress string

	// External capability endpoints and keys. Every capability client
	// is built from these at start-up whatever they hold; an empty
	// value does not disable a capability.
	VisionAPIBase         string
	VisionAPIKey          string
	LLMAPIBase            string
	LLMAPIKey             string
	TranscriptionAPIBase  string
	TranscriptionAPIKey   string
	SceneExtractionAPIKey string

	// Object storage (spec §6 "Object storage").
	StorageBucket    string
	StorageBaseURL   string
	StorageAccessKey string
	StorageSecretKey string
	StorageRegion    string

	// Postgres connection string for the job/media store.
	DBConnectionString string

	MaxJobsInFlight int
}
