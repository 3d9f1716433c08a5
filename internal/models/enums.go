package models

type PolicyStatus string

const (
	PolicyCreated     PolicyStatus = "CREATED"
	PolicyAutoClaim   PolicyStatus = "AUTOCLAIM"
	PolicyManualClaim PolicyStatus = "MANUALCLAIM"
	PolicyExpired     PolicyStatus = "EXPIRED"
)

type ProposalStatus string

const (
	ProposalOpen     ProposalStatus = "open"
	ProposalConsumed ProposalStatus = "consumed"
)
