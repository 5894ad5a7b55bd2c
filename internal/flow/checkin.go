package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arielabs/arie/internal/models"
)

// Sentiment brackets for the feeling step. Each boundary is inclusive to the
// lower bracket.
const (
	crisisThreshold  = 0.01
	lowMoodThreshold = 0.49
	neutralThreshold = 0.85
)

// Check-in script message texts.
const (
	msgCheckinGreeting = "Hello %s! Glad to hear from you today. How are you feeling?"

	msgCrisisReply    = "I’m really sorry to hear that! Let's get you connected with someone that you can talk to"
	msgCrisisAskPhone = "Enter the phone number of the person you want to talk to"
	msgCrisisAskName  = "What is their name?"
	msgCrisisClosing  = "I contacted the person for you. Please take it easy for the rest of the day."

	msgLowMoodReply  = " I see. Sometimes, our bad days make our good days feel even better!"
	msgNeutralReply  = "I see. Thanks for sharing!"
	msgPositiveReply = "Good to hear that you are doing well!"

	msgConcernRecap     = "I will provide a recap from our last session. When I asked you what your biggest concerns were with using %s, you said, \"%s\". Is that correct?"
	msgGoalRecap        = "Also, when I asked you what your goal was for last session, you said \"%s\". To achieve this goal, you said \"%s\". Did you achieve your goal?"
	msgConcernAskNew    = "What is your new concern? I will update it for you."
	msgConcernUpdated   = "I have updated your concern for you %s"
	msgGoalAchieved     = "Great!"
	msgExerciseIntro    = "Alright, now we will move on to some cognitive behavioral exercises that will help you handle situations that may trigger your addiction."
	msgGoalAskExplain   = "Oh no! Could you explain why?"
	msgGoalAskDifferent = "What can you do differently to achieve this goal in the future?"
	msgExerciseIntro2   = "Good to hear! Now we will move on to some cognitive behavioral exercises that will help you handle situations that may trigger your addiction."

	msgScenario = "Imagine you are out on a Friday night hanging out with a friend. You go back to one of your friend’s apartment, and they offer you %s. What will you tell your friend?"

	msgScenario2Yes = "When I asked you what is most difficult for you in abstaining from your substance, you said \"%s\". For many, recovery is hard, and it is normal for there to be relapses in the path towards recovery. However, I want you to start building healthy coping habits, not using substances to do so. If your friend tells you “Using one time isn’t going to get you addicted,” and offers the substance to you, what will you say?"
	msgScenario2No  = "Your friend tells you that you’re being silly. “Using one time isn’t going to get you addicted,” they say. They offer it to you again. What do you say?"

	msgExerciseResultNo    = "Believing one can use again without getting addicted to the substance is one of the most common warning signs of relapse. Nice job for resisting the urge! This wraps up today’s cognitive behavioral exercise."
	msgExerciseResultYes   = "This is a tough situation to be in. But you need to assert your choice to abstain, even if social forces increase the ease of its usage. In response to your friend, you can say “I do not want that, and since you’re my friend, I would appreciate it if you respected my decision.” This wraps up our cognitive behavioral exercise."
	msgExerciseResultOther = "No intent was recognized."

	msgCheckinClosing = "Your daily assignment for today is to write five “I” statement goals regarding your goals for recovery. Make them specific, achievable, and measurable. These can be related to your lifestyle, career, relationships, health, or finances. Next time, we will talk about them! See you later %s!"

	msgRetype = "Sorry I didn't get that. Please retype your answer"
)

// CheckinEngine runs the recurring follow-up interview, including the
// sentiment branch and the crisis sub-flow.
type CheckinEngine struct {
	classifier IntentClassifier
	scorer     SentimentScorer
}

// NewCheckinEngine creates a check-in engine with the given classifier and scorer.
func NewCheckinEngine(classifier IntentClassifier, scorer SentimentScorer) *CheckinEngine {
	return &CheckinEngine{classifier: classifier, scorer: scorer}
}

// Step advances the check-in script by one turn. Classifier and scorer
// failures degrade to a re-prompt with the state unchanged; nothing here is
// fatal to the turn.
func (e *CheckinEngine) Step(ctx context.Context, state CheckinState, profile models.UserProfile, input string) (CheckinState, StepResult) {
	slog.Debug("CheckinEngine step", "state", state)
	res := StepResult{Profile: profile}

	switch state {
	case CheckinNone:
		res.Messages = append(res.Messages, say(fmt.Sprintf(msgCheckinGreeting, profile.Name)))
		return CheckinFeeling, res

	case CheckinFeeling:
		score, err := e.scorer.Score(ctx, input)
		if err != nil {
			slog.Warn("CheckinEngine sentiment error, re-prompting", "error", err)
			res.Messages = append(res.Messages, say(msgRetype))
			return state, res
		}

		if score <= crisisThreshold {
			res.Messages = append(res.Messages, say(msgCrisisReply), say(msgCrisisAskPhone))
			return CheckinPhone, res
		}
		switch {
		case score <= lowMoodThreshold:
			res.Messages = append(res.Messages, say(msgLowMoodReply))
		case score <= neutralThreshold:
			res.Messages = append(res.Messages, say(msgNeutralReply))
		default:
			res.Messages = append(res.Messages, say(msgPositiveReply))
		}
		res.Messages = append(res.Messages, ask(fmt.Sprintf(msgConcernRecap, profile.Drug, profile.Concern), yesNoReplies))
		return CheckinRecap, res

	case CheckinPhone:
		res.Profile.Number = input
		res.Messages = append(res.Messages, say(msgCrisisAskName))
		return CheckinCall, res

	case CheckinCall:
		res.Profile.Friend = input
		snapshot := res.Profile
		res.NotifyContact = &snapshot
		res.Messages = append(res.Messages, say(msgCrisisClosing))
		res.Profile = models.UserProfile{}
		return CheckinNone, res

	case CheckinRecap:
		switch e.yesNo(ctx, input) {
		case models.IntentYes:
			res.Messages = append(res.Messages, ask(fmt.Sprintf(msgGoalRecap, profile.Goal, profile.Action), yesNoReplies))
			return CheckinRecap2, res
		case models.IntentNo:
			res.Messages = append(res.Messages, say(msgConcernAskNew))
			return CheckinConcernCorrection, res
		default:
			res.Messages = append(res.Messages, say(msgRetype))
			return state, res
		}

	case CheckinConcernCorrection:
		res.Profile.Concern = input
		res.Messages = append(res.Messages,
			say(fmt.Sprintf(msgConcernUpdated, profile.Name)),
			ask(fmt.Sprintf(msgGoalRecap, profile.Goal, profile.Action), yesNoReplies))
		return CheckinRecap2, res

	case CheckinRecap2:
		switch e.yesNo(ctx, input) {
		case models.IntentYes:
			res.Messages = append(res.Messages, say(msgGoalAchieved), say(msgExerciseIntro))
			return CheckinScenario, res
		case models.IntentNo:
			res.Messages = append(res.Messages, say(msgGoalAskExplain))
			return CheckinExplain, res
		default:
			res.Messages = append(res.Messages, say(msgRetype))
			return state, res
		}

	case CheckinExplain:
		res.Messages = append(res.Messages, say(msgGoalAskDifferent))
		return CheckinDifferent, res

	case CheckinDifferent:
		res.Messages = append(res.Messages, say(msgExerciseIntro2))
		return CheckinScenario, res

	case CheckinScenario:
		res.Messages = append(res.Messages, say(fmt.Sprintf(msgScenario, profile.Drug)))
		return CheckinScenario2, res

	case CheckinScenario2:
		switch e.yesNo(ctx, input) {
		case models.IntentYes:
			res.Messages = append(res.Messages, say(fmt.Sprintf(msgScenario2Yes, profile.Difficult)))
			return CheckinResult, res
		case models.IntentNo:
			res.Messages = append(res.Messages, say(msgScenario2No))
			return CheckinResult, res
		default:
			res.Messages = append(res.Messages, say(msgRetype))
			return state, res
		}

	case CheckinResult:
		// Final exercise: fixed responses, no profile field stored, and the
		// state advances whatever the answer was.
		switch e.yesNo(ctx, input) {
		case models.IntentYes:
			res.Messages = append(res.Messages, say(msgExerciseResultYes))
		case models.IntentNo:
			res.Messages = append(res.Messages, say(msgExerciseResultNo))
		default:
			res.Messages = append(res.Messages, say(msgExerciseResultOther))
		}
		return CheckinFinal, res

	case CheckinFinal:
		res.Messages = append(res.Messages, say(fmt.Sprintf(msgCheckinClosing, profile.Name)))
		res.Profile = models.UserProfile{}
		return CheckinNone, res

	default:
		slog.Error("CheckinEngine unknown state, resetting", "state", state)
		res.Messages = append(res.Messages, say(fmt.Sprintf(msgCheckinGreeting, profile.Name)))
		return CheckinFeeling, res
	}
}

// yesNo classifies input and collapses classification errors into the
// unrecognized outcome.
func (e *CheckinEngine) yesNo(ctx context.Context, input string) models.Intent {
	intent, err := e.classifier.Classify(ctx, input)
	if err != nil {
		slog.Warn("CheckinEngine classification error, treating as unrecognized", "error", err)
		return models.IntentUnrecognized
	}
	if intent != models.IntentYes && intent != models.IntentNo {
		return models.IntentUnrecognized
	}
	return intent
}
