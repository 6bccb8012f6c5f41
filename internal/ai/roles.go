package ai

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Role identifies one of the pipeline's reasoning personas.
type Role string

const (
	ResumeAnalyst Role = "resume_analyzer"
	JobAnalyst    Role = "job_description_analyzer"
	MatchAdvisor  Role = "match_advisor"
)

// Roles returns every known role in pipeline order.
func Roles() []Role {
	return []Role{ResumeAnalyst, JobAnalyst, MatchAdvisor}
}

// ParseRole resolves a configured role name.
func ParseRole(name string) (Role, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, role := range Roles() {
		if string(role) == name {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown agent role: %q", name)
}

// Profile is the fixed persona text handed to the model for a role.
type Profile struct {
	Title          string `mapstructure:"title"`
	Goal           string `mapstructure:"goal"`
	Backstory      string `mapstructure:"backstory"`
	Task           string `mapstructure:"task"`
	ExpectedOutput string `mapstructure:"expected-output"`
}

// Profiles maps roles to their personas.
type Profiles map[Role]Profile

// DefaultProfiles returns the built-in personas.
func DefaultProfiles() Profiles {
	return Profiles{
		ResumeAnalyst: {
			Title:     "Senior Resume Analyst",
			Goal:      "Extract a precise, factual profile of the candidate from their resume.",
			Backstory: "You have screened thousands of resumes for engineering and business roles and know how to separate concrete evidence from filler.",
			Task: "Analyze the candidate's resume. Identify skills (technical and soft), years and kind of experience, " +
				"education, certifications and notable achievements. If the resume text starts with \"Error:\", explain that the resume could not be read and why.",
			ExpectedOutput: "A structured summary with sections: Skills, Experience, Education, Certifications, Achievements.",
		},
		JobAnalyst: {
			Title:     "Job Description Analyst",
			Goal:      "Determine exactly what the employer is looking for in this job posting.",
			Backstory: "You are a technical recruiter who reads job postings daily and knows which requirements are hard filters and which are wishes.",
			Task: "Analyze the job posting text. Identify the role title, required skills, preferred skills, experience level, " +
				"education requirements and key responsibilities. If the posting text starts with \"Error:\", explain that the posting could not be retrieved and why.",
			ExpectedOutput: "A structured summary with sections: Role, Required Skills, Preferred Skills, Experience, Education, Responsibilities.",
		},
		MatchAdvisor: {
			Title:     "Career Match Advisor",
			Goal:      "Give the candidate an honest assessment of how well they match the job and how to improve their chances.",
			Backstory: "You are a career coach who combines recruiter insight with practical advice on tailoring applications.",
			Task: "Compare the resume analysis with the job description analysis. Estimate an overall match percentage, list matching " +
				"strengths, skill gaps and concrete recommendations for improving the resume for this role. If either analysis reports an error, say what is missing and assess only what is available.",
			ExpectedOutput: "A report with sections: Match Score, Strengths, Gaps, Recommendations, Summary.",
		},
	}
}

// Apply merges persona overrides keyed by role name. Empty override fields
// keep the current text.
func (p Profiles) Apply(raw map[string]any) error {
	for name, value := range raw {
		role, err := ParseRole(name)
		if err != nil {
			return err
		}

		var override Profile
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &override,
			TagName:          "mapstructure",
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return err
		}

		if err := decoder.Decode(value); err != nil {
			return fmt.Errorf("decode %s profile: %w", role, err)
		}

		p[role] = merge(p[role], override)
	}

	return nil
}

func merge(base, override Profile) Profile {
	pick := func(current, next string) string {
		if next = strings.TrimSpace(next); next != "" {
			return next
		}
		return current
	}

	return Profile{
		Title:          pick(base.Title, override.Title),
		Goal:           pick(base.Goal, override.Goal),
		Backstory:      pick(base.Backstory, override.Backstory),
		Task:           pick(base.Task, override.Task),
		ExpectedOutput: pick(base.ExpectedOutput, override.ExpectedOutput),
	}
}
