package form

// prompts asks for the field the current stage collects.
var prompts = map[Field]string{
	FieldName:     "Sure — what is your full name?",
	FieldPhone:    "What's the best phone number to reach you?",
	FieldEmail:    "And your email address?",
	FieldDatetime: "When would you prefer the appointment?",
}

// acks confirm a just-accepted field before the next prompt.
var acks = map[Field]string{
	FieldName:     "Thanks!",
	FieldPhone:    "Got it.",
	FieldEmail:    "Thanks.",
	FieldDatetime: "Noted.",
}

const (
	cancelledReply = "No problem, I've cancelled the booking. Let me know if you need anything else."

	giveUpReply = "I'm having trouble collecting that information. Let's stop here for now — feel free to start over whenever you're ready."

	datetimeHint = "I couldn't parse a date/time. Please try something like 'tomorrow 3pm' or 'next Monday 10:30'."

	pastDatetimeHint = "That time is already in the past. When in the future would work for you?"

	saveRetryReply = "I have all your details but couldn't save the booking just now. Send any message and I'll try again."

	saveFailedReply = "I'm sorry — I still can't save your booking. Please try again in a few minutes, or reach us directly."
)

// promptFor returns the question for a stage's field.
func promptFor(field Field) string {
	if p, ok := prompts[field]; ok {
		return p
	}
	return "Could you provide that information?"
}

// ackFor returns the short acknowledgement for an accepted field.
func ackFor(field Field) string {
	if a, ok := acks[field]; ok {
		return a
	}
	return "Thanks."
}
