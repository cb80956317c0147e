package prompts

type ProfileContext struct {
	Name       string   `json:"name"`
	Headline   string   `json:"headline"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	HourlyRate float64  `json:"hourlyRate,omitempty"`
	Portfolio  []string `json:"portfolio,omitempty"`
	TargetRole string   `json:"targetRole,omitempty"`
}

func (c ProfileContext) Validate() error {
	return requireFields("headline", c.Headline, "bio", c.Bio)
}

type ProfileSuggestions struct {
	Headline          string   `json:"headline"`
	Bio               string   `json:"bio"`
	SuggestedSkills   []string `json:"suggestedSkills"`
	Improvements      []string `json:"improvements"`
	CompletenessScore int      `json:"completenessScore"`
}

var ProfileOptimizerSchema = Schema{Fields: []Field{
	field("headline", String),
	field("bio", String),
	field("suggestedSkills", Array),
	field("improvements", Array),
	field("completenessScore", Number),
}}

func ProfileOptimizerPrompt(c ProfileContext) string {
	var s section
	s.line("Improve a freelancer's marketplace profile so clients understand their value quickly.")
	s.line("Rewrite the headline (under 70 characters) and bio (under 120 words) in first person.")
	s.line("Keep every claim grounded in the current profile. %s", noInvention)
	s.blank()
	s.line("Name: %s", orNone(c.Name))
	s.line("Current headline: %s", label(c.Headline))
	s.line("Skills: %s", joinList(c.Skills))
	s.line("Hourly rate: %s", money(c.HourlyRate, ""))
	s.line("Portfolio items: %s", joinList(c.Portfolio))
	s.line("Target role: %s", orNone(c.TargetRole))
	s.line("Current bio: %s", excerpt(c.Bio))
	return s.shape(`
{
  "headline": "text",
  "bio": "text",
  "suggestedSkills": ["skill"],
  "improvements": ["concrete change"],
  "completenessScore": 70
}`)
}

type Review struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

type ReviewSummaryContext struct {
	SubjectName string   `json:"subjectName"`
	Reviews     []Review `json:"reviews"`
}

// MaxSummarizedReviews bounds how many reviews one summary prompt embeds.
const MaxSummarizedReviews = 20

func (c ReviewSummaryContext) Validate() error {
	if len(c.Reviews) == 0 {
		return requireFields("reviews", "")
	}
	return nil
}

type ReviewSummary struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Sentiment  string   `json:"sentiment"`
}

var ReviewSummarySchema = Schema{Fields: []Field{
	field("summary", String),
	field("strengths", Array),
	field("weaknesses", Array),
	field("sentiment", String, "positive", "mixed", "negative"),
}}

func ReviewSummaryPrompt(c ReviewSummaryContext) string {
	reviews := c.Reviews
	if len(reviews) > MaxSummarizedReviews {
		reviews = reviews[:MaxSummarizedReviews]
	}

	var total float64
	for _, r := range reviews {
		total += r.Rating
	}

	var s section
	s.line("Summarize the reviews a marketplace member has received, for a prospective client.")
	s.line("Be balanced and mention recurring themes only. %s", noInvention)
	s.blank()
	s.line("Member: %s", orNone(c.SubjectName))
	if len(reviews) > 0 {
		s.line("Reviews shown: %d, average rating %.1f", len(reviews), total/float64(len(reviews)))
	} else {
		s.line("Reviews shown: 0")
	}
	for i, r := range reviews {
		s.line("%d. (%.1f) %s", i+1, r.Rating, Truncate(r.Comment, MaxFreeText/2))
	}
	return s.shape(`
{
  "summary": "two or three sentences",
  "strengths": ["theme"],
  "weaknesses": ["theme"],
  "sentiment": "positive" | "mixed" | "negative"
}`)
}

// MessageReplyContext feeds the only plain-text feature: the model writes
// the reply body directly.
type MessageReplyContext struct {
	SenderRole string           `json:"senderRole"`
	JobTitle   string           `json:"jobTitle,omitempty"`
	Thread     []DisputeMessage `json:"thread"`
	Intent     string           `json:"intent,omitempty"`
}

// MaxThreadMessages is how many trailing thread messages a reply prompt embeds.
const MaxThreadMessages = 8

func (c MessageReplyContext) Validate() error {
	if err := requireFields("senderRole", c.SenderRole); err != nil {
		return err
	}
	if len(c.Thread) == 0 {
		return requireFields("thread", "")
	}
	return nil
}

func MessageReplyPrompt(c MessageReplyContext) string {
	thread := c.Thread
	if len(thread) > MaxThreadMessages {
		thread = thread[len(thread)-MaxThreadMessages:]
	}

	var s section
	s.line("Draft a short reply for a %s on a freelance marketplace.", label(c.SenderRole))
	s.line("Be polite and specific. Keep it under 120 words. Never share contact details or ask to move off the platform.")
	if c.Intent != "" {
		s.line("The reply should: %s", excerpt(c.Intent))
	}
	s.blank()
	s.line("Job: %s", orNone(c.JobTitle))
	s.line("Conversation so far:")
	for _, m := range thread {
		s.line("- %s: %s", label(m.From), Truncate(m.Text, MaxFreeText/2))
	}
	s.blank()
	s.line("Reply with the message text only.")
	return s.b.String()
}
