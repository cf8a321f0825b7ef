package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"

	AnalystSystemPrompt = `You are BiomeAI, an expert microbiome analyst assistant. Provide concise, actionable insights from microbiome reports.

Response guidelines:
- Keep responses under 800 characters when possible
- Use bullet points for key findings
- Focus on 2-3 main insights per response
- Be direct and specific
- Ask one focused follow-up question
- Reference specific data from their report

Format your responses:
• Key Finding: [specific insight]
• Recommendation: [actionable step]
• Question: [one relevant follow-up]

Stay concise, accurate, and always suggest consulting healthcare providers for medical decisions.`

	ReportContextHeader = "Here are relevant sections from the user's microbiome report:\n\n"
	ReportSectionPrefix = "Report Section: "
)

// Outbound texts shown to the user.
const (
	GreetingMessage         = "Greetings! 🧬 Upload a microbiome report and we can get started!"
	UploadInProgressMessage = "⏳ I'm still processing your previous upload. Please wait a moment!"
	AnalyzingReportMessage  = "📊 Analyzing your microbiome report..."
	IndexingReportMessage   = "🔬 Creating knowledge base from your report..."
	DecodeFailedMessage     = "❌ Sorry, I couldn't process your PDF. Please make sure it's a readable microbiome report."
	UnsupportedFileMessage  = "❌ Please upload your microbiome report as a PDF."
	ThreadOwnedMessage      = "❌ This thread belongs to another user's report. Mention me in the channel to start your own."
	GenericErrorMessage     = "❌ Sorry, I encountered an error processing your question. Please try again."
	NoReportMessage         = "I couldn't find a report for this thread. Mention me with a PDF to get started!"

	DateConfirmationKnownFormat = "📅 I see your microbiome report was generated on **%s**\n" +
		"That's roughly **%d months** ago. Gut profiles can shift fast, so I'll keep that in mind.\n\n" +
		"Did you take any antibiotics around the time of the test?"
	DateConfirmationUnknown = "📅 Looks like the report date is missing.\n" +
		"When did you take this test? (Month & year is enough.)\n\n" +
		"Also, did you take any antibiotics around the time of the test?"

	DietStatusMessage     = "🔍 Analyzing your gut bacteria patterns..."
	SymptomsStatusMessage = "🔍 Looking at how these bacteria affect digestion..."
	SummaryStatusMessage  = "✨ Perfect! Now creating your personalized executive summary..."

	DietPredictionHeader   = "🍽️ **Based on your gut bacteria, I predict you typically eat:**\n\n"
	DietPredictionFooter   = "\n\n**Is this accurate?** Tell me about your actual diet and any restrictions you have."
	SymptomsHeader         = "🤢 **Based on your microbiome, I predict you might experience:**\n\n"
	SymptomsFooter         = "\n\n**What digestive symptoms do you actually experience?** (or none if you feel great!)"
	ExecutiveSummaryHeader = "🧬 **EXECUTIVE SUMMARY**\n\n"
	ReadyForQuestions      = "🎯 **Ready for your questions!** Ask me anything about your microbiome results."

	UploadRecordFormat = "[PDF Upload: %s]"
	ThreadNameFormat   = "🧬 %s - %s"

	StatsCommand  = "!stats"
	HealthCommand = "!health"
)
