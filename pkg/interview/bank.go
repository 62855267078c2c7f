package interview

// SeedQuestion opens every interview at position 0.
const SeedQuestion = "Tell me about your experience with software development."

// ClosingRemark is the terminal sentinel returned once the fallback bank is
// exhausted. Appending it closes the session.
const ClosingRemark = "Thank you for your detailed responses. Do you have any questions for me about the role or the company?"

// BankQuestion is one canonical fallback question with its associated tags.
// A question with tags is preferred when the candidate's answer mentions one
// of them; untagged questions are only picked at random.
type BankQuestion struct {
	Text string
	Tags []string
}

// questionBank is the fixed fallback bank, shared by all sessions and never
// mutated.
var questionBank = []BankQuestion{
	{
		Text: "Could you elaborate on your experience with React or other frontend frameworks?",
		Tags: []string{"react", "frontend"},
	},
	{
		Text: "Could you describe your experience with database design and optimization?",
		Tags: []string{"database", "sql", "nosql"},
	},
	{
		Text: "How do you ensure the quality and reliability of your code?",
		Tags: []string{"testing"},
	},
	{Text: "What's your approach to debugging complex issues?"},
	{Text: "Can you describe a challenging project you worked on and how you overcame obstacles?"},
	{Text: "How do you stay updated with the latest technologies in your field?"},
	{Text: "How do you handle code reviews and feedback?"},
	{Text: "What version control systems are you familiar with?"},
	{Text: "How do you approach optimizing application performance?"},
	{Text: "Tell me about a time you had to learn a new technology quickly."},
}

// BankSize reports how many questions the fallback bank holds.
func BankSize() int {
	return len(questionBank)
}

// questionForTag maps a vocabulary tag to its canonical bank question.
func questionForTag(tag string) (string, bool) {
	for _, q := range questionBank {
		for _, t := range q.Tags {
			if t == tag {
				return q.Text, true
			}
		}
	}
	return "", false
}
