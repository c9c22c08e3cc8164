package model

// Setting is a key-value application setting. Public settings (checkout key
// id, support contact, banner text) are served unauthenticated.
type Setting struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Public bool   `json:"public"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
