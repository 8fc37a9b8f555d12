package domain

import "fmt"

// JobKey identifies a scheduled job: one per subscriber and delivery time.
// Re-adding the same key replaces the previous job.
type JobKey struct {
	SubscriberID string
	DeliveryTime string
}

func (k JobKey) String() string {
	return fmt.Sprintf("push_%s_%s", k.SubscriberID, k.DeliveryTime)
}

// Trigger is an hour and minute on the scheduler's reference clock (UTC)
type Trigger struct {
	Hour   int
	Minute int
}

// Spec renders the trigger as a five-field cron expression
func (t Trigger) Spec() string {
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

func (t Trigger) String() string {
	return fmt.Sprintf("%02d:%02d UTC", t.Hour, t.Minute)
}

// Job is a live scheduled delivery derived from a subscriber's configuration
type Job struct {
	Key      JobKey
	Trigger  Trigger
	Timezone string
}
