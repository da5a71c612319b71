// Package ad defines the ad kinds and the uniform result value returned by
// every ad display request.
package ad

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which display hook an ad request targets.
type Kind string

const (
	KindFullScreen Kind = "full-screen"
	KindRewarded   Kind = "rewarded"
)

// AllKinds lists every supported ad kind.
var AllKinds = []Kind{KindFullScreen, KindRewarded}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full-screen", "fullscreen", "interstitial":
		return KindFullScreen, nil
	case "rewarded", "reward":
		return KindRewarded, nil
	default:
		return "", fmt.Errorf("unknown ad kind %q", s)
	}
}

// Valid reports whether k is one of AllKinds.
func (k Kind) Valid() bool {
	return k == KindFullScreen || k == KindRewarded
}

func (k Kind) String() string { return string(k) }

// ErrorReason explains why an ad was not shown. The zero value means the ad
// was shown.
type ErrorReason string

const (
	ReasonNone           ErrorReason = ""
	ReasonNoActivePlugin ErrorReason = "no-active-plugin"
	ReasonNotSupported   ErrorReason = "not-supported"
	ReasonAlreadyPlaying ErrorReason = "already-playing"
	ReasonUnknown        ErrorReason = "unknown"

	// Reasons only a plugin reports.
	ReasonAdBlocker ErrorReason = "adblocker"
	ReasonTime      ErrorReason = "time"
)

// ErrMalformedResult is returned by Result.Validate when Shown and Reason
// disagree.
var ErrMalformedResult = errors.New("malformed ad result")

// Result is the outcome of one ad display request.
type Result struct {
	Shown  bool
	Reason ErrorReason
}

// Shown returns the result of a successfully displayed ad.
func Shown() Result {
	return Result{Shown: true}
}

// Failed returns a result for an ad that was not shown.
func Failed(reason ErrorReason) Result {
	return Result{Reason: reason}
}

// Validate checks that exactly one of Shown and Reason is set.
func (r Result) Validate() error {
	if r.Shown && r.Reason != ReasonNone {
		return fmt.Errorf("%w: shown with reason %q", ErrMalformedResult, r.Reason)
	}
	if !r.Shown && r.Reason == ReasonNone {
		return fmt.Errorf("%w: not shown and no reason", ErrMalformedResult)
	}
	return nil
}

func (r Result) String() string {
	if r.Shown {
		return "shown"
	}
	return "not shown (" + string(r.Reason) + ")"
}

type resultJSON struct {
	DidShowAd   bool    `json:"didShowAd"`
	ErrorReason *string `json:"errorReason"`
}

// MarshalJSON encodes the result as {"didShowAd": bool, "errorReason": string|null}.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{DidShowAd: r.Shown}
	if r.Reason != ReasonNone {
		reason := string(r.Reason)
		out.ErrorReason = &reason
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the representation produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Shown = in.DidShowAd
	r.Reason = ReasonNone
	if in.ErrorReason != nil {
		r.Reason = ErrorReason(*in.ErrorReason)
	}
	return nil
}
