package domain

import "time"

const SessionStateStarted = "STARTED"

// Session is one fundraiser-tablet interaction, created at login. Immutable
// afterwards apart from lifecycle state transitions.
type Session struct {
	SessionID    string     `db:"SESSION_ID" json:"session_id"`
	FundraiserID string     `db:"FUNDRAISER_ID" json:"fundraiser_id"`
	CharityID    *string    `db:"CHARITY_ID" json:"charity_id,omitempty"`
	CampaignID   *string    `db:"CAMPAIGN_ID" json:"campaign_id,omitempty"`
	State        string     `db:"STATE" json:"state"`
	DeviceID     *string    `db:"DEVICE_ID" json:"device_id,omitempty"`
	CreatedAt    *time.Time `db:"CREATED_AT" json:"created_at,omitempty"`
}

// DonorSession links a donor to a session and snapshots the charity/campaign
// assignment at association time. The snapshot is deliberately denormalized:
// campaign configuration can change later and historical attribution must
// not drift with it.
type DonorSession struct {
	SessionID    string  `db:"SESSION_ID" json:"session_id"`
	DonorID      string  `db:"DONOR_ID" json:"donor_id"`
	FundraiserID string  `db:"FUNDRAISER_ID" json:"fundraiser_id"`
	CharityID    *string `db:"CHARITY_ID" json:"charity_id,omitempty"`
	CampaignID   *string `db:"CAMPAIGN_ID" json:"campaign_id,omitempty"`
}
