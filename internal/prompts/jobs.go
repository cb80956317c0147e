package prompts

// Job-posting features: pricing, description drafting, quality scoring,
// skill and category extraction, scope questions and milestone plans.

type PricingContext struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location,omitempty"`
	Urgency     string   `json:"urgency,omitempty"`
	Currency    string   `json:"currency,omitempty"`
}

func (c PricingContext) Validate() error {
	return requireFields("title", c.Title, "description", c.Description)
}

type PricingSuggestion struct {
	MinPrice         float64 `json:"minPrice"`
	MaxPrice         float64 `json:"maxPrice"`
	RecommendedPrice float64 `json:"recommendedPrice"`
	Currency         string  `json:"currency"`
	PricingModel     string  `json:"pricingModel"`
	Confidence       string  `json:"confidence"`
	Reasoning        string  `json:"reasoning"`
}

var PricingSuggestionSchema = Schema{Fields: []Field{
	field("minPrice", Number),
	field("maxPrice", Number),
	field("recommendedPrice", Number),
	field("currency", String),
	field("pricingModel", String, "fixed", "hourly"),
	field("confidence", String, "low", "medium", "high"),
	field("reasoning", String),
}}

func PricingSuggestionPrompt(c PricingContext) string {
	var s section
	s.line("You are a pricing analyst for a freelance services marketplace.")
	s.line("Suggest a fair budget range for the job below, as a client would post it.")
	s.line("%s", noInvention)
	s.blank()
	s.line("Job title: %s", label(c.Title))
	s.line("Category: %s", orNone(c.Category))
	s.line("Skills: %s", joinList(c.Skills))
	s.line("Location: %s", orNone(c.Location))
	s.line("Urgency: %s", orNone(c.Urgency))
	s.line("Preferred currency: %s", orNone(c.Currency))
	s.line("Description: %s", excerpt(c.Description))
	return s.shape(`
{
  "minPrice": 150,
  "maxPrice": 400,
  "recommendedPrice": 250,
  "currency": "USD",
  "pricingModel": "fixed" | "hourly",
  "confidence": "low" | "medium" | "high",
  "reasoning": "one or two sentences"
}`)
}

type JobDescriptionContext struct {
	Title    string   `json:"title"`
	Notes    string   `json:"notes"`
	Category string   `json:"category,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	Budget   float64  `json:"budget,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Deadline string   `json:"deadline,omitempty"`
}

func (c JobDescriptionContext) Validate() error {
	return requireFields("title", c.Title, "notes", c.Notes)
}

type JobDescription struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description"`
	Deliverables []string `json:"deliverables"`
	Requirements []string `json:"requirements"`
}

var JobDescriptionSchema = Schema{Fields: []Field{
	field("title", String),
	field("summary", String),
	field("description", String),
	field("deliverables", Array),
	field("requirements", Array),
}}

func JobDescriptionPrompt(c JobDescriptionContext) string {
	var s section
	s.line("You help clients on a freelance marketplace write clear job posts.")
	s.line("Turn the rough notes below into a well structured job description.")
	s.line("%s", noInvention)
	s.line("If the notes do not mention deliverables or requirements, return an empty list.")
	s.blank()
	s.line("Working title: %s", label(c.Title))
	s.line("Category: %s", orNone(c.Category))
	s.line("Skills: %s", joinList(c.Skills))
	s.line("Budget: %s", money(c.Budget, c.Currency))
	s.line("Deadline: %s", orNone(c.Deadline))
	s.line("Client notes: %s", excerpt(c.Notes))
	return s.shape(`
{
  "title": "concise job title",
  "summary": "one sentence overview",
  "description": "two to four short paragraphs",
  "deliverables": ["deliverable"],
  "requirements": ["requirement"]
}`)
}

type JobQualityContext struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills,omitempty"`
	Budget      float64  `json:"budget,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
}

func (c JobQualityContext) Validate() error {
	return requireFields("title", c.Title, "description", c.Description)
}

type JobQualityScore struct {
	Score       int      `json:"score"`
	Grade       string   `json:"grade"`
	Strengths   []string `json:"strengths"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

var JobQualitySchema = Schema{Fields: []Field{
	field("score", Number),
	field("grade", String, "poor", "fair", "good", "excellent"),
	field("strengths", Array),
	field("issues", Array),
	field("suggestions", Array),
}}

func JobQualityScorePrompt(c JobQualityContext) string {
	var s section
	s.line("You review job posts on a freelance marketplace before they go live.")
	s.line("Score how likely this post is to attract qualified bids, from 0 to 100.")
	s.line("Judge clarity, scope definition, budget realism and completeness.")
	s.blank()
	s.line("Title: %s", label(c.Title))
	s.line("Skills: %s", joinList(c.Skills))
	s.line("Budget: %s", money(c.Budget, c.Currency))
	s.line("Deadline: %s", orNone(c.Deadline))
	s.line("Description: %s", excerpt(c.Description))
	return s.shape(`
{
  "score": 72,
  "grade": "poor" | "fair" | "good" | "excellent",
  "strengths": ["what works"],
  "issues": ["what is missing or unclear"],
  "suggestions": ["concrete improvement"]
}`)
}

type SkillExtractionContext struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (c SkillExtractionContext) Validate() error {
	return requireFields("description", c.Description)
}

type SkillExtraction struct {
	Skills          []ExtractedSkill `json:"skills"`
	PrimaryCategory string           `json:"primaryCategory"`
}

type ExtractedSkill struct {
	Name       string `json:"name"`
	Importance string `json:"importance"`
}

var SkillExtractionSchema = Schema{Fields: []Field{
	field("skills", Array),
	field("primaryCategory", String),
}}

func SkillExtractionPrompt(c SkillExtractionContext) string {
	var s section
	s.line("Extract the professional skills a freelancer needs for this job.")
	s.line("List only skills that the text states or clearly implies; do not make up extra ones.")
	s.blank()
	s.line("Title: %s", orNone(c.Title))
	s.line("Description: %s", excerpt(c.Description))
	return s.shape(`
{
  "skills": [{"name": "React", "importance": "required" | "preferred"}],
  "primaryCategory": "Web Development"
}`)
}

type CategoryContext struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

func (c CategoryContext) Validate() error {
	if err := requireFields("title", c.Title); err != nil {
		return err
	}
	if len(c.Categories) == 0 {
		return requireFields("categories", "")
	}
	return nil
}

type CategorySuggestion struct {
	Category     string   `json:"category"`
	Alternatives []string `json:"alternatives"`
	Confidence   string   `json:"confidence"`
}

var CategorySuggestionSchema = Schema{Fields: []Field{
	field("category", String),
	field("alternatives", Array),
	field("confidence", String, "low", "medium", "high"),
}}

func CategorySuggestionPrompt(c CategoryContext) string {
	var s section
	s.line("Pick the marketplace category that best fits this job.")
	s.line("You must choose from the allowed categories exactly as written.")
	s.blank()
	s.line("Allowed categories: %s", joinList(c.Categories))
	s.line("Title: %s", label(c.Title))
	s.line("Description: %s", excerpt(c.Description))
	return s.shape(`
{
  "category": "one allowed category",
  "alternatives": ["up to two other allowed categories"],
  "confidence": "low" | "medium" | "high"
}`)
}

type ScopeContext struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Audience    string `json:"audience,omitempty"`
}

func (c ScopeContext) Validate() error {
	return requireFields("title", c.Title, "description", c.Description)
}

type ScopeClarification struct {
	Questions      []ScopeQuestion `json:"questions"`
	MissingDetails []string        `json:"missingDetails"`
	ScopeRisk      string          `json:"scopeRisk"`
}

type ScopeQuestion struct {
	Question string `json:"question"`
	Why      string `json:"why"`
}

var ScopeClarifierSchema = Schema{Fields: []Field{
	field("questions", Array),
	field("missingDetails", Array),
	field("scopeRisk", String, "low", "medium", "high"),
}}

func ScopeClarifierPrompt(c ScopeContext) string {
	var s section
	s.line("A job post may be ambiguous. Write the questions a careful freelancer")
	s.line("would ask before bidding, so the client can clarify scope up front.")
	s.line("%s", noInvention)
	s.blank()
	s.line("Question tone: written for %s", orNone(c.Audience))
	s.line("Title: %s", label(c.Title))
	s.line("Description: %s", excerpt(c.Description))
	return s.shape(`
{
  "questions": [{"question": "...", "why": "what it unblocks"}],
  "missingDetails": ["detail the post leaves out"],
  "scopeRisk": "low" | "medium" | "high"
}`)
}

type MilestoneContext struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	Currency    string  `json:"currency,omitempty"`
	Weeks       int     `json:"weeks,omitempty"`
}

func (c MilestoneContext) Validate() error {
	return requireFields("title", c.Title, "description", c.Description)
}

type MilestonePlan struct {
	Milestones     []Milestone `json:"milestones"`
	TotalAmount    float64     `json:"totalAmount"`
	EstimatedWeeks int         `json:"estimatedWeeks"`
}

type Milestone struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueWeek     int     `json:"dueWeek"`
}

var MilestonePlannerSchema = Schema{Fields: []Field{
	field("milestones", Array),
	field("totalAmount", Number),
	field("estimatedWeeks", Number),
}}

func MilestonePlannerPrompt(c MilestoneContext) string {
	var s section
	s.line("Split this freelance job into two to five payment milestones.")
	s.line("Milestone amounts must add up to the budget when one is given.")
	s.line("%s", noInvention)
	s.blank()
	s.line("Title: %s", label(c.Title))
	s.line("Budget: %s", money(c.Budget, c.Currency))
	if c.Weeks > 0 {
		s.line("Timeline: %d weeks", c.Weeks)
	} else {
		s.line("Timeline: not specified")
	}
	s.line("Description: %s", excerpt(c.Description))
	return s.shape(`
{
  "milestones": [{"title": "...", "description": "...", "amount": 100, "dueWeek": 1}],
  "totalAmount": 300,
  "estimatedWeeks": 3
}`)
}
