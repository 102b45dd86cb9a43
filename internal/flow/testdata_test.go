package flow

import "surveyflow/internal/model"

func textQ(id string) model.Question {
	return model.NewQuestion(id, model.TypeText, "Question "+id)
}

func ratingQ(id string, scale int) model.Question {
	return model.NewScale(id, model.TypeRating, "Rate "+id, scale)
}

func choiceQ(id string, t model.QuestionType, ids ...string) model.Question {
	return model.NewChoice(id, t, "Pick "+id, model.Opts(ids...)...)
}

func cond(op model.Operator, v model.Value) model.Condition {
	return model.Condition{Operator: op, Value: v}
}

func condOn(src string, op model.Operator, v model.Value) model.Condition {
	return model.Condition{SourceQuestionID: src, Operator: op, Value: v}
}
