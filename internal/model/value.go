package model

import "strconv"

// RecipientType distinguishes who a payment split routes to.
type RecipientType string

const (
	// RecipientLocal pays a recipient of the hosting feed itself.
	RecipientLocal RecipientType = "local"

	// RecipientRemote pays someone referenced from another feed.
	RecipientRemote RecipientType = "remote"
)

// ValueBlock is a podcast:value element.
type ValueBlock struct {
	Type       string           `json:"type,omitempty"`
	Method     string           `json:"method,omitempty"`
	Suggested  string           `json:"suggested,omitempty"`
	Recipients []ValueRecipient `json:"recipients,omitempty"`
}

// ValueRecipient is one podcast:valueRecipient entry.
type ValueRecipient struct {
	Name        string        `json:"name,omitempty"`
	Type        RecipientType `json:"type"`
	AddressType string        `json:"addressType,omitempty"`
	Address     string        `json:"address,omitempty"`
	Percentage  float64       `json:"percentage"`
	Amount      float64       `json:"amount,omitempty"`
	CustomKey   string        `json:"customKey,omitempty"`
	CustomValue string        `json:"customValue,omitempty"`
	Fee         bool          `json:"fee,omitempty"`

	// Ref is set for remote recipients expressed as podcast:remoteItem.
	Ref *RemoteItemReference `json:"ref,omitempty"`
}

// ValueTimeSplit is a time-bounded payment routing segment within an episode.
type ValueTimeSplit struct {
	StartTime  float64          `json:"startTime"`
	Duration   float64          `json:"duration"`
	Recipients []ValueRecipient `json:"recipients"`
}

// FirstRemote returns the first remote recipient with a positive percentage.
func (s ValueTimeSplit) FirstRemote() (ValueRecipient, bool) {
	for _, r := range s.Recipients {
		if r.Type == RecipientRemote && r.Percentage > 0 {
			return r, true
		}
	}
	return ValueRecipient{}, false
}

// IsMusicCandidate reports whether the segment may reference a song: it
// must start after zero, have a positive duration and at least one remote
// recipient. A split that only pays the host is not a music reference.
func (s ValueTimeSplit) IsMusicCandidate() bool {
	if s.StartTime <= 0 || s.Duration <= 0 {
		return false
	}
	_, ok := s.FirstRemote()
	return ok
}

// PaymentInfo carries the payment routing for a MusicTrack.
type PaymentInfo struct {
	LightningAddress string  `json:"lightningAddress,omitempty"`
	SuggestedAmount  float64 `json:"suggestedAmount,omitempty"`
	CustomKey        string  `json:"customKey,omitempty"`
	CustomValue      string  `json:"customValue,omitempty"`
}

// PaymentFromRecipient builds PaymentInfo from a recipient.
func PaymentFromRecipient(r ValueRecipient) *PaymentInfo {
	if r.Address == "" && r.CustomKey == "" && r.Amount == 0 {
		return nil
	}
	return &PaymentInfo{
		LightningAddress: r.Address,
		SuggestedAmount:  r.Amount,
		CustomKey:        r.CustomKey,
		CustomValue:      r.CustomValue,
	}
}

// Payment returns the payment info for the highest-split recipient of the
// block, or nil when the block has no addressable recipient.
func (v *ValueBlock) Payment() *PaymentInfo {
	if v == nil {
		return nil
	}
	var best *ValueRecipient
	for i := range v.Recipients {
		r := &v.Recipients[i]
		if r.Fee || r.Address == "" {
			continue
		}
		if best == nil || r.Percentage > best.Percentage {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	p := PaymentFromRecipient(*best)
	if p != nil && p.SuggestedAmount == 0 && v.Suggested != "" {
		p.SuggestedAmount = parseAmount(v.Suggested)
	}
	return p
}

func parseAmount(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
