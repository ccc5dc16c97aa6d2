package bank

import (
	"fmt"

	"github.com/pavelanni/enade/internal/model"
)

var sampleTopics = []string{"Dados pessoais", "Formação acadêmica", "Avaliação"}

// LikertOptions are the options stored with every likert question.
func LikertOptions() []model.Option {
	return []model.Option{
		{Label: "1", Text: "Discordo totalmente"},
		{Label: "2"},
		{Label: "3"},
		{Label: "4"},
		{Label: "5"},
		{Label: "6", Text: "Concordo totalmente"},
		{Label: model.LikertCannotAnswer, Text: "Não sei responder"},
		{Label: model.LikertNotApplicable, Text: "Não se aplica"},
	}
}

// Sample returns a placeholder bank: questions 1-20 followed by the
// licenciatura competences 50-54.
func Sample() []model.Question {
	var questions []model.Question
	for i := 1; i <= 20; i++ {
		category, typ := "academico", model.TypeLikert
		switch {
		case i <= 10:
			category, typ = "dados-pessoais", model.TypeMultipleChoice
		case i <= 19:
			category, typ = "formacao", model.TypeMultipleChoice
		}

		var options []model.Option
		if typ == model.TypeMultipleChoice {
			for _, l := range []string{"A", "B", "C", "D"} {
				options = append(options, model.Option{Label: l, Text: fmt.Sprintf("Opção %s para questão %d", l, i)})
			}
		} else {
			options = LikertOptions()
		}

		questions = append(questions, model.Question{
			ID:       i,
			Number:   i,
			Category: category,
			Type:     typ,
			Text:     fmt.Sprintf("Questão exemplo %d: %s", i, sampleTopics[i%3]),
			Options:  options,
		})
	}
	for i := 50; i < 55; i++ {
		questions = append(questions, model.Question{
			ID:       i,
			Number:   i,
			Category: "licenciatura",
			Type:     model.TypeLikert,
			Text:     fmt.Sprintf("Competência %d: Habilidade para aplicar conhecimentos na prática", i-49),
			Options:  LikertOptions(),
		})
	}
	return questions
}
