//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package config

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string

// Platform selects the messaging transport
// ENUM(telegram,feishu)
type Platform string

// StorageDriver selects the subscriber store
// ENUM(file,sqlite,postgres)
type StorageDriver string

// AnalyzerKind selects the Fetch/Analyze engine
// ENUM(feed,command)
type AnalyzerKind string
