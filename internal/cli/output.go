package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Balances:
		o.printBalances(v)
	case ActivePlayers:
		o.printActivePlayers(v)
	case Challenge:
		o.printChallenge(v)
	case AttackResult:
		o.printAttackResult(v)
	case RespondResult:
		o.printRespondResult(v)
	case ReviewResult:
		o.printReviewResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Balances response type (matches API)
type Balances struct {
	Player       string     `json:"player"`
	ReviewTokens int        `json:"review_tokens"`
	AttackTokens int        `json:"attack_tokens"`
	ShieldTokens int        `json:"shield_tokens"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
}

// ActivePlayer response type
type ActivePlayer struct {
	Player       string `json:"player"`
	ReviewTokens int    `json:"review_tokens"`
	ShieldTokens int    `json:"shield_tokens"`
	CanChallenge bool   `json:"can_challenge"`
}

// ActivePlayers response type
type ActivePlayers struct {
	Players []ActivePlayer `json:"players"`
}

// Challenge response type
type Challenge struct {
	ID          string     `json:"id"`
	Attacker    string     `json:"attacker"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	ShieldUsed  bool       `json:"shield_used"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// AttackResult response type
type AttackResult struct {
	ChallengeID      string    `json:"challenge_id"`
	ExpiresAt        time.Time `json:"expires_at"`
	AttackerBalances Balances  `json:"attacker_balances"`
}

// RespondResult response type
type RespondResult struct {
	Defended  bool      `json:"defended"`
	Challenge Challenge `json:"challenge"`
	Balances  Balances  `json:"balances"`
}

// ReviewResult response type
type ReviewResult struct {
	Balances   Balances `json:"balances"`
	CooldownMs int64    `json:"cooldown_ms"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printBalances(b Balances) {
	fmt.Printf("Player: %s\n", b.Player)
	fmt.Printf("Review Tokens: %d\n", b.ReviewTokens)
	fmt.Printf("Attack Tokens: %d\n", b.AttackTokens)
	fmt.Printf("Shield Tokens: %d\n", b.ShieldTokens)
	if b.LastReviewAt != nil {
		fmt.Printf("Last Review: %s\n", b.LastReviewAt.Format(time.RFC3339))
	}
}

func (o *Output) printActivePlayers(a ActivePlayers) {
	fmt.Printf("Active Players (%d):\n", len(a.Players))
	for _, p := range a.Players {
		attackable := ""
		if p.CanChallenge {
			attackable = " [attackable]"
		}
		fmt.Printf("  - %s: %d review, %d shield%s\n", p.Player, p.ReviewTokens, p.ShieldTokens, attackable)
	}
}

func (o *Output) printChallenge(c Challenge) {
	fmt.Printf("Challenge: %s\n", c.ID)
	fmt.Printf("Attacker: %s\n", c.Attacker)
	fmt.Printf("Target: %s\n", c.Target)
	fmt.Printf("Status: %s\n", c.Status)
	if c.ShieldUsed {
		fmt.Println("Shield Used: yes")
	}
	fmt.Printf("Expires: %s\n", c.ExpiresAt.Format(time.RFC3339))
	if c.RespondedAt != nil {
		fmt.Printf("Responded: %s\n", c.RespondedAt.Format(time.RFC3339))
	}
}

func (o *Output) printAttackResult(a AttackResult) {
	fmt.Printf("Challenge started: %s\n", a.ChallengeID)
	fmt.Printf("Target must respond by: %s\n", a.ExpiresAt.Format(time.RFC3339))
	fmt.Println()
	o.printBalances(a.AttackerBalances)
}

func (o *Output) printRespondResult(r RespondResult) {
	if r.Defended {
		fmt.Println("Attack defended!")
	} else {
		fmt.Println("Attack succeeded, tokens were stolen")
	}
	fmt.Println()
	o.printBalances(r.Balances)
}

func (o *Output) printReviewResult(r ReviewResult) {
	fmt.Println("Review accepted")
	fmt.Printf("Cooldown: %s\n", time.Duration(r.CooldownMs)*time.Millisecond)
	fmt.Println()
	o.printBalances(r.Balances)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
