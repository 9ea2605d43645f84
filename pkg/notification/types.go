package notification

// Type classifies the business event behind a notification.
type Type string

const (
	TypeMessageReceived    Type = "message_received"
	TypePaymentReceived    Type = "payment_received"
	TypePaymentSent        Type = "payment_sent"
	TypeContractCreated    Type = "contract_created"
	TypeContractCompleted  Type = "contract_completed"
	TypeMilestoneCompleted Type = "milestone_completed"
	TypeDisputeOpened      Type = "dispute_opened"
	TypeDisputeResolved    Type = "dispute_resolved"
	TypeReviewReceived     Type = "review_received"
	TypeProfileVerified    Type = "profile_verified"
	TypeDeadlineReminder   Type = "deadline_reminder"
	TypeSecurityAlert      Type = "security_alert"
	TypeAccountUpdate      Type = "account_update"
	TypeSystemAnnouncement Type = "system_announcement"
)

// Types lists all known notification types.
var Types = []Type{
	TypeMessageReceived,
	TypePaymentReceived,
	TypePaymentSent,
	TypeContractCreated,
	TypeContractCompleted,
	TypeMilestoneCompleted,
	TypeDisputeOpened,
	TypeDisputeResolved,
	TypeReviewReceived,
	TypeProfileVerified,
	TypeDeadlineReminder,
	TypeSecurityAlert,
	TypeAccountUpdate,
	TypeSystemAnnouncement,
}

// Valid reports whether t is a known notification type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Channel is a delivery channel.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
	ChannelSMS   Channel = "sms"
)

// Channels lists all delivery channels.
var Channels = []Channel{ChannelPush, ChannelEmail, ChannelInApp, ChannelSMS}

// Valid reports whether ch is a known channel.
func (ch Channel) Valid() bool {
	switch ch {
	case ChannelPush, ChannelEmail, ChannelInApp, ChannelSMS:
		return true
	}
	return false
}

// Priority is the delivery urgency of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank returns the dispatch ordering of the priority: urgent first.
// Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Frequency controls how often a user receives notifications of one
// (type, channel) combination.
type Frequency string

const (
	FrequencyInstant Frequency = "instant"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyNever   Frequency = "never"
)
