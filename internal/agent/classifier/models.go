package classifier

type Input struct {
	RawInput string `json:"rawInput"`
}

type Output struct {
	ResolvedQuery string `json:"resolvedQuery"`
	EmailShaped   bool   `json:"emailShaped"`
}
