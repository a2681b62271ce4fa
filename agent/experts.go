package agent

import (
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is here primarily to follow the value of the positions in their portfolio,
			their progress toward their financial goals, and the news about the companies they hold.

			Devise a plan of questions to ask to each experts and come up with the best response to the user's request.
			Answer in markdown. Never give personal investment advice, stick to the facts.

			The user will assume that you know about their tickers, check the portfolio first to understand what they are.
			`),
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst creates the expert in charge of the user's portfolio and goals.
func NewAnalyst(w *Workspace) *Expert {
	lib := []Function{holdingsTool(w), summaryTool(w), positionTool(w), goalsTool(w)}
	if w.Quotes != nil {
		lib = append(lib, quoteTool(w))
	}

	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. They know every position of the user's portfolio: quantities,
		buy prices, current prices, market values and profit or loss. They also follow the user's
		financial goals and can tell whether they are on track.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are a portfolio analyst in charge of the user's portfolio.
			You know how to use the Tools to extract relevant information about the user's positions and goals.
			You are part of a team of experts, yours is everything about the user's portfolio. They might ask
			you questions about the user's portfolio, pardon their approximative language and figure out what they meant.

			Use the available tools to get information about
			  - holdings, sorted as needed
			  - the portfolio totals, best and worst performers
			  - a single position
			  - financial goals and their progress
			Always quote figures from the tools, never compute them yourself.
			`),
		},
		Library: NewLibrary(lib),
	}
}

// NewNewsroom creates the expert in charge of the financial news.
func NewNewsroom(w *Workspace) *Expert {
	lib := []Function{newsTool(w), headlinesTool(w)}

	return &Expert{
		Name: "Newsroom",
		Description: `This is the Newsroom. They read the latest financial news, about the companies
		held in the portfolio or any other subject, and the top business headlines.
		Ask the Newsroom whenever you need recent information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are a financial journalist. You use the Tools to search the latest news articles
			and the top headlines. Summarize them and relate them to the question you are asked.
			Always cite the source and the link of the articles you mention.
			`),
		},
		Library: NewLibrary(lib),
	}
}
