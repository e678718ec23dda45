package models

// ConfirmationRequest represents a pending confirmation shown to the user
// (avoiding import cycle with eventbus).
type ConfirmationRequest struct {
	ID        string // Unique identifier for this confirmation request
	Operation string // Description of the operation to confirm
}

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages            []Message            // Current conversation snapshot from core
	Input               string               // User input field
	Status              string               // Status bar text
	Loading             bool                 // A generation is in flight
	LoadingDots         int                  // Animation counter for loading dots
	Width               int                  // Terminal width
	Height              int                  // Terminal height
	ChatServiceReady    bool                 // Whether chat service is available
	PendingConfirmation *ConfirmationRequest // Current confirmation request
}
