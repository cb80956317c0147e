package prompts

import "fmt"

type BidWriterContext struct {
	JobTitle         string   `json:"jobTitle"`
	JobDescription   string   `json:"jobDescription"`
	JobBudget        float64  `json:"jobBudget,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	FreelancerName   string   `json:"freelancerName"`
	FreelancerSkills []string `json:"freelancerSkills"`
	Experience       string   `json:"experience,omitempty"`
	Tone             string   `json:"tone,omitempty"`
}

func (c BidWriterContext) Validate() error {
	return requireFields("jobTitle", c.JobTitle, "jobDescription", c.JobDescription, "freelancerName", c.FreelancerName)
}

type BidDraft struct {
	CoverLetter   string   `json:"coverLetter"`
	ProposedPrice float64  `json:"proposedPrice"`
	DeliveryDays  int      `json:"deliveryDays"`
	KeyPoints     []string `json:"keyPoints"`
}

var BidWriterSchema = Schema{Fields: []Field{
	field("coverLetter", String),
	field("proposedPrice", Number),
	field("deliveryDays", Number),
	field("keyPoints", Array),
}}

func BidWriterPrompt(c BidWriterContext) string {
	tone := label(c.Tone)
	if tone == "" {
		tone = "professional and friendly"
	}

	var s section
	s.line("Write a bid (cover letter and terms) for a freelancer applying to a job.")
	s.line("Only claim skills and experience the freelancer profile lists; never invent credentials.")
	s.line("Keep the cover letter under 180 words. Tone: %s.", tone)
	s.blank()
	s.line("Job title: %s", label(c.JobTitle))
	s.line("Client budget: %s", money(c.JobBudget, c.Currency))
	s.line("Job description: %s", excerpt(c.JobDescription))
	s.blank()
	s.line("Freelancer: %s", label(c.FreelancerName))
	s.line("Skills: %s", joinList(c.FreelancerSkills))
	s.line("Experience: %s", textOrNone(c.Experience))
	return s.shape(`
{
  "coverLetter": "text",
  "proposedPrice": 250,
  "deliveryDays": 7,
  "keyPoints": ["why this freelancer fits"]
}`)
}

type BidSummary struct {
	ID             string   `json:"id"`
	FreelancerName string   `json:"freelancerName"`
	Price          float64  `json:"price"`
	DeliveryDays   int      `json:"deliveryDays"`
	Rating         float64  `json:"rating,omitempty"`
	CoverLetter    string   `json:"coverLetter"`
	Skills         []string `json:"skills,omitempty"`
}

type BidAnalysisContext struct {
	JobTitle       string       `json:"jobTitle"`
	JobDescription string       `json:"jobDescription"`
	Currency       string       `json:"currency,omitempty"`
	Bids           []BidSummary `json:"bids"`
}

// MaxAnalyzedBids bounds how many bids one analysis prompt embeds.
const MaxAnalyzedBids = 10

func (c BidAnalysisContext) Validate() error {
	if err := requireFields("jobTitle", c.JobTitle); err != nil {
		return err
	}
	if len(c.Bids) == 0 {
		return requireFields("bids", "")
	}
	return nil
}

type BidAnalysis struct {
	Ranking        []RankedBid `json:"ranking"`
	RecommendedBid string      `json:"recommendedBidId"`
	Summary        string      `json:"summary"`
}

type RankedBid struct {
	BidID string   `json:"bidId"`
	Score int      `json:"score"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
}

var BidAnalysisSchema = Schema{Fields: []Field{
	field("ranking", Array),
	field("recommendedBidId", String),
	field("summary", String),
}}

func BidAnalysisPrompt(c BidAnalysisContext) string {
	var s section
	s.line("Help a client compare the bids received on their job.")
	s.line("Rank the bids by overall fit (price, timeline, relevance, rating) and explain briefly.")
	s.line("Refer to bids only by the ids given. %s", noInvention)
	s.blank()
	s.line("Job title: %s", label(c.JobTitle))
	s.line("Job description: %s", excerpt(c.JobDescription))
	s.blank()

	bids := c.Bids
	if len(bids) > MaxAnalyzedBids {
		bids = bids[:MaxAnalyzedBids]
	}
	for _, b := range bids {
		rating := "no rating"
		if b.Rating > 0 {
			rating = fmt.Sprintf("rating %.1f", b.Rating)
		}
		s.line("Bid %s by %s: %s, %d days, %s, skills: %s",
			label(b.ID), label(b.FreelancerName), money(b.Price, c.Currency), b.DeliveryDays, rating, joinList(b.Skills))
		s.line("  Cover letter: %s", Truncate(b.CoverLetter, MaxFreeText/2))
	}
	return s.shape(`
{
  "ranking": [{"bidId": "id", "score": 85, "pros": ["..."], "cons": ["..."]}],
  "recommendedBidId": "id",
  "summary": "two sentences"
}`)
}

type JobMatchContext struct {
	JobTitle         string   `json:"jobTitle"`
	JobDescription   string   `json:"jobDescription"`
	JobSkills        []string `json:"jobSkills"`
	FreelancerTitle  string   `json:"freelancerTitle"`
	FreelancerSkills []string `json:"freelancerSkills"`
	FreelancerBio    string   `json:"freelancerBio,omitempty"`
	HourlyRate       float64  `json:"hourlyRate,omitempty"`
}

func (c JobMatchContext) Validate() error {
	return requireFields("jobTitle", c.JobTitle, "freelancerTitle", c.FreelancerTitle)
}

type JobMatch struct {
	MatchScore    int      `json:"matchScore"`
	Fit           string   `json:"fit"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
	Explanation   string   `json:"explanation"`
}

var JobMatchSchema = Schema{Fields: []Field{
	field("matchScore", Number),
	field("fit", String, "weak", "partial", "strong"),
	field("matchedSkills", Array),
	field("missingSkills", Array),
	field("explanation", String),
}}

func JobMatchPrompt(c JobMatchContext) string {
	var s section
	s.line("Assess how well a freelancer matches a job, on a 0 to 100 scale.")
	s.line("%s", noInvention)
	s.blank()
	s.line("Job title: %s", label(c.JobTitle))
	s.line("Job skills: %s", joinList(c.JobSkills))
	s.line("Job description: %s", excerpt(c.JobDescription))
	s.blank()
	s.line("Freelancer headline: %s", label(c.FreelancerTitle))
	s.line("Freelancer skills: %s", joinList(c.FreelancerSkills))
	s.line("Hourly rate: %s", money(c.HourlyRate, ""))
	s.line("Freelancer bio: %s", textOrNone(c.FreelancerBio))
	return s.shape(`
{
  "matchScore": 80,
  "fit": "weak" | "partial" | "strong",
  "matchedSkills": ["skill"],
  "missingSkills": ["skill"],
  "explanation": "one or two sentences"
}`)
}
