package prompts

// Trust and safety features: fraud screening, dispute mediation and
// content moderation.

type FraudCheckContext struct {
	EntityType     string   `json:"entityType"`
	Title          string   `json:"title,omitempty"`
	Content        string   `json:"content"`
	AccountAgeDays int      `json:"accountAgeDays,omitempty"`
	PriorReports   int      `json:"priorReports,omitempty"`
	Signals        []string `json:"signals,omitempty"`
}

func (c FraudCheckContext) Validate() error {
	return requireFields("entityType", c.EntityType, "content", c.Content)
}

type FraudAssessment struct {
	RiskScore      int      `json:"riskScore"`
	RiskLevel      string   `json:"riskLevel"`
	Flags          []string `json:"flags"`
	Recommendation string   `json:"recommendation"`
	Reasoning      string   `json:"reasoning"`
}

var FraudCheckSchema = Schema{Fields: []Field{
	field("riskScore", Number),
	field("riskLevel", String, "low", "medium", "high"),
	field("flags", Array),
	field("recommendation", String, "allow", "review", "block"),
	field("reasoning", String),
}}

func FraudCheckPrompt(c FraudCheckContext) string {
	var s section
	s.line("You screen marketplace content for fraud and scams.")
	s.line("Look for off-platform payment requests, advance-fee patterns, credential phishing, fake offers and impersonation.")
	s.line("Score risk from 0 (clean) to 100 (certain fraud). Flag only patterns visible in the input.")
	s.blank()
	s.line("Entity type: %s", label(c.EntityType))
	s.line("Title: %s", orNone(c.Title))
	s.line("Account age (days): %d", c.AccountAgeDays)
	s.line("Prior reports: %d", c.PriorReports)
	s.line("System signals: %s", joinList(c.Signals))
	s.line("Content: %s", excerpt(c.Content))
	return s.shape(`
{
  "riskScore": 10,
  "riskLevel": "low" | "medium" | "high",
  "flags": ["pattern found"],
  "recommendation": "allow" | "review" | "block",
  "reasoning": "one or two sentences"
}`)
}

type DisputeMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type DisputeContext struct {
	JobTitle        string           `json:"jobTitle"`
	ContractAmount  float64          `json:"contractAmount,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	ClientClaim     string           `json:"clientClaim"`
	FreelancerClaim string           `json:"freelancerClaim"`
	Milestones      []string         `json:"milestones,omitempty"`
	Messages        []DisputeMessage `json:"messages,omitempty"`
}

// MaxDisputeMessages is how many trailing messages a mediation prompt embeds.
const MaxDisputeMessages = 10

func (c DisputeContext) Validate() error {
	return requireFields("jobTitle", c.JobTitle, "clientClaim", c.ClientClaim, "freelancerClaim", c.FreelancerClaim)
}

type DisputeMediation struct {
	Summary          string   `json:"summary"`
	KeyIssues        []string `json:"keyIssues"`
	SuggestedOutcome string   `json:"suggestedOutcome"`
	RefundPercent    float64  `json:"refundPercent"`
	NextSteps        []string `json:"nextSteps"`
}

var DisputeMediationSchema = Schema{Fields: []Field{
	field("summary", String),
	field("keyIssues", Array),
	field("suggestedOutcome", String, "release_payment", "partial_refund", "full_refund", "needs_review"),
	field("refundPercent", Number),
	field("nextSteps", Array),
}}

func DisputeMediationPrompt(c DisputeContext) string {
	var s section
	s.line("You are a neutral mediator for a dispute between a client and a freelancer.")
	s.line("Weigh both sides evenly. When evidence is insufficient, suggest needs_review.")
	s.line("%s", noInvention)
	s.blank()
	s.line("Job: %s", label(c.JobTitle))
	s.line("Contract amount: %s", money(c.ContractAmount, c.Currency))
	s.line("Milestones: %s", joinList(c.Milestones))
	s.line("Client says: %s", excerpt(c.ClientClaim))
	s.line("Freelancer says: %s", excerpt(c.FreelancerClaim))

	msgs := c.Messages
	if len(msgs) > MaxDisputeMessages {
		msgs = msgs[len(msgs)-MaxDisputeMessages:]
	}
	if len(msgs) > 0 {
		s.blank()
		s.line("Recent messages:")
		for _, m := range msgs {
			s.line("- %s: %s", label(m.From), Truncate(m.Text, MaxFreeText/2))
		}
	}
	return s.shape(`
{
  "summary": "neutral summary",
  "keyIssues": ["issue"],
  "suggestedOutcome": "release_payment" | "partial_refund" | "full_refund" | "needs_review",
  "refundPercent": 0,
  "nextSteps": ["step"]
}`)
}

type ModerationContext struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

func (c ModerationContext) Validate() error {
	return requireFields("contentType", c.ContentType, "content", c.Content)
}

type ModerationResult struct {
	Approved   bool     `json:"approved"`
	Categories []string `json:"categories"`
	Severity   string   `json:"severity"`
	Reason     string   `json:"reason"`
}

var ContentModerationSchema = Schema{Fields: []Field{
	field("approved", Bool),
	field("categories", Array),
	field("severity", String, "none", "low", "medium", "high"),
	field("reason", String),
}}

func ContentModerationPrompt(c ModerationContext) string {
	var s section
	s.line("Moderate user content posted on a freelance marketplace.")
	s.line("Check for harassment, hate speech, sexual content, personal contact details shared to bypass the platform, spam and illegal services.")
	s.line("Approve content that breaks no rule. Use an empty categories list when approved.")
	s.blank()
	s.line("Content type: %s", label(c.ContentType))
	s.line("Content: %s", excerpt(c.Content))
	return s.shape(`
{
  "approved": true,
  "categories": ["harassment"],
  "severity": "none" | "low" | "medium" | "high",
  "reason": "short reason"
}`)
}
