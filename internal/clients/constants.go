package clients

const (
	USER_AGENT = "sentilens-relay/1.0 (+https://github.com/spacesedan/sentilens)"

	// MAX_BODY_BYTES caps both inbound relay bodies and upstream responses.
	MAX_BODY_BYTES = 1 << 20
)
