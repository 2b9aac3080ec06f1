package models

// PushSubscribeRequest is the standard browser subscription descriptor.
type PushSubscribeRequest struct {
	Endpoint string               `json:"endpoint"`
	Keys     PushSubscriptionKeys `json:"keys"`
}

// PushSubscriptionKeys are the client keys used to encrypt push payloads.
type PushSubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// VAPIDKey is the public key handed to the client for subscription setup.
type VAPIDKey struct {
	Key string `json:"key"`
}

// TelegramStatus reports whether the bot transport is configured. It never
// carries secrets.
type TelegramStatus struct {
	Configured bool `json:"configured"`
}
