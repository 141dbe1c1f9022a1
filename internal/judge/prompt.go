package judge

import "fmt"

// #region eval-prompt

// evalTemplate instructs the judge to score the answer 1-10 and vote on
// context sufficiency. The 40/30/30 distribution request shapes the judge's
// expected output; the controller does not enforce it.
const evalTemplate = `Original Question: %s
Related Context Chunks:
%s
Original Answer: %s

Objective (O): You are to evaluate the original answer for the original prompt on a scale of 1 to 10 based on its accuracy and reasonability.
Additionally, determine if the original prompt needs more related context (1), less context (-1) or should keep the current context unchanged (0).
Style (S): Provide a clear and concise evaluation in a formal and professional style.
Response (R): Ensure the output follows this format:
    Evaluation Score: [1-10]. (The answer is highly accurate if Score >= 9.)
    Context Adjustment: [1, 0, -1].
    Context adjustment should output "less context (-1)" with a probability of 40%%, "more context (1)" with a probability of 30%%, and "keep current context (0)" with a probability of 30%%.
(output example):
    Evaluation Score: 8
    Context Adjustment: -1`

// EvalPrompt builds the fixed self-assessment prompt for one record.
func EvalPrompt(question, contextText, answer string) string {
	return fmt.Sprintf(evalTemplate, question, contextText, answer)
}

// #endregion eval-prompt
