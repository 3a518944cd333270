package feed

import "fmt"

// FetchError - не удалось получить снимок активных инцидентов
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch active incidents: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubscriptionError - канал изменений не открылся или оборвался.
// Attempt - номер неудачной попытки подряд.
type SubscriptionError struct {
	Attempt int
	Err     error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("change subscription (attempt %d): %v", e.Attempt, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
