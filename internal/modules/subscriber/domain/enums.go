//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ReportMode selects which items a digest reports
// ENUM(daily,current,incremental)
type ReportMode string
