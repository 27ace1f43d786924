package ports

// EventEmitter pushes a named event with a payload to the frontend.
type EventEmitter interface {
	Emit(name string, payload any)
}

// Alerter shows a blocking, modal error dialog to the user.
type Alerter interface {
	Alert(title, message string)
}
