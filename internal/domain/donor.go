package domain

import "time"

// Donor is the durable identity of a giver. Email is the natural key: the
// same person upserted twice resolves to the same DONOR_ID with fields
// overwritten to the latest values.
type Donor struct {
	DonorID      string     `db:"DONOR_ID" json:"donor_id"`
	Title        *string    `db:"TITLE" json:"title,omitempty"`
	FirstName    string     `db:"FIRST_NAME" json:"first_name"`
	MiddleName   *string    `db:"MIDDLE_NAME" json:"middle_name,omitempty"`
	LastName     string     `db:"LAST_NAME" json:"last_name"`
	DOBDate      *time.Time `db:"DOB_DATE" json:"dob_date,omitempty"`
	MobileE164   string     `db:"MOBILE_E164" json:"mobile_e164"`
	Email        string     `db:"EMAIL" json:"email"`
	Address1     string     `db:"ADDRESS1" json:"address1"`
	Address2     *string    `db:"ADDRESS2" json:"address2,omitempty"`
	City         string     `db:"CITY" json:"city"`
	Region       string     `db:"REGION" json:"region"`
	PostalCode   string     `db:"POSTAL_CODE" json:"postal_code"`
	Country      string     `db:"COUNTRY" json:"country"`
	ConsentSMS   *bool      `db:"CONSENT_SMS" json:"consent_sms,omitempty"`
	ConsentEmail *bool      `db:"CONSENT_EMAIL" json:"consent_email,omitempty"`
	ConsentMail  *bool      `db:"CONSENT_MAIL" json:"consent_mail,omitempty"`
	CreatedAt    *time.Time `db:"CREATED_AT" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `db:"UPDATED_AT" json:"updated_at,omitempty"`
}

// Consent carries the three communication opt-in flags.
type Consent struct {
	SMS   bool `json:"consent_sms"`
	Email bool `json:"consent_email"`
	Mail  bool `json:"consent_mail"`
}

// DonorContact is the reduced view returned by the donor-detail endpoint.
type DonorContact struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
