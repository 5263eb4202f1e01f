package domain

import "time"

// VerificationResult is the normalized outcome of the SMS round-trip.
type VerificationResult string

const (
	VerificationPending VerificationResult = "PENDING"
	VerificationYes     VerificationResult = "YES"
	VerificationNo      VerificationResult = "NO"
	VerificationInvalid VerificationResult = "INVALID"
)

// VerificationSms tracks one confirmation round-trip. A row is "open" when
// an outbound message was sent and no inbound reply has been matched yet
// (INBOUND_TS is null); the tracker resolves the most recent open row per
// phone number.
type VerificationSms struct {
	VerifID      string     `db:"VERIF_ID" json:"verif_id"`
	SessionID    *string    `db:"SESSION_ID" json:"session_id,omitempty"`
	DonorID      *string    `db:"DONOR_ID" json:"donor_id,omitempty"`
	SentTS       *time.Time `db:"SENT_TS" json:"sent_ts,omitempty"`
	MessageBody  *string    `db:"MESSAGE_BODY" json:"message_body,omitempty"`
	InboundTS    *time.Time `db:"INBOUND_TS" json:"inbound_ts,omitempty"`
	InboundBody  *string    `db:"INBOUND_BODY" json:"inbound_body,omitempty"`
	Result       *string    `db:"RESULT" json:"result,omitempty"`
	TwilioMsgSID *string    `db:"TWILIO_MSG_SID" json:"twilio_msg_sid,omitempty"`
	MobileE164   *string    `db:"MOBILE_E164" json:"mobile_e164,omitempty"`
	ToNumber     *string    `db:"TO_NUMBER" json:"to_number,omitempty"`
}
