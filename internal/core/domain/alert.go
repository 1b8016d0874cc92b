package domain

// AlertType selects how the dashboard renders a notice.
type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertError   AlertType = "error"
	AlertInfo    AlertType = "info"
)

// Alert is the user-visible outcome of every table and session operation.
type Alert struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        AlertType `json:"type"`
}

func SuccessAlert(title, description string) Alert {
	return Alert{Title: title, Description: description, Type: AlertSuccess}
}

func ErrorAlert(title, description string) Alert {
	return Alert{Title: title, Description: description, Type: AlertError}
}

// SessionExpiredNotice is shown whenever the lending API rejects the token.
var SessionExpiredNotice = Alert{
	Title:       "Session Expired",
	Description: "Your session has expired. Please login again.",
	Type:        AlertError,
}
