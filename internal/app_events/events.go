package appevents

// AppUIMessage is a marker interface for messages sent from the App's logic controller to the UI.
type AppUIMessage interface {
	isUIMessage()
}

// UIMessage is a base struct that can be embedded in other types to implement the AppUIMessage interface.
type UIMessage struct{}

func (UIMessage) isUIMessage() {}

// AppErrorMsg is the terminal message of a failed run.
type AppErrorMsg struct {
	UIMessage
	Phase string
	Err   error
}
