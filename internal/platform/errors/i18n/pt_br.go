package i18n

var ptBRMessages = map[Code]string{
	CodeApplicationIDRequired:              "O ID da inscrição é obrigatório.",
	CodeApplicationEventIDRequired:         "O ID do evento é obrigatório.",
	CodeApplicationUserIDRequired:          "O ID do candidato é obrigatório.",
	CodeApplicationInvalidStatus:           "O status {{.Status}} não é válido para inscrições.",
	CodeApplicationInvalidStatusTransition: "Uma inscrição não pode passar de {{.From}} para {{.To}}.",
	CodeApplicationIDsRequired:             "Selecione pelo menos uma inscrição.",
	CodeResponseQuestionKeyRequired:        "A chave da pergunta é obrigatória.",
	CodeResponseQuestionUnknown:            "A pergunta {{.QuestionKey}} não pertence a este evento.",
	CodeAssignmentInvalidStage:             "A etapa de avaliação {{.Stage}} não é suportada.",
	CodeAssignmentReviewerRequired:         "O ID do avaliador é obrigatório.",
	CodeAssignmentMissing:                  "O avaliador não está atribuído a esta inscrição na etapa {{.Stage}}.",
	CodeEvaluationInvalidScore:             "As notas devem ficar entre {{.Min}} e {{.Max}}.",
	CodeEvaluationInvalidRecommendation:    "A recomendação {{.Recommendation}} não é suportada.",
	CodeCheckApplicationMismatch:           "A verificação pertence a outra inscrição.",
	CodeCheckApplicationComplete:           "A inscrição não tem informações pendentes.",
	CodeCheckRequired:                      "Verifique a inscrição antes de criar este email.",
	CodeEmailIDRequired:                    "O ID do email é obrigatório.",
	CodeEmailNotDraft:                      "Apenas rascunhos podem ser alterados; este email está {{.Status}}.",
	CodeEmailRecipientMissing:              "O candidato não tem endereço de email cadastrado.",
	CodeConsensusInvalidSort:               "O campo de ordenação {{.Sort}} não é suportado.",
	CodeConsensusInvalidRegion:             "A região {{.Region}} não é suportada.",
	CodeFilterInvalid:                      "A expressão de filtro é inválida.",
	CodePageTokenInvalid:                   "O token de página é inválido ou pertence a outra listagem.",
	CodeQueryParamInvalid:                  "O parâmetro {{.Param}} tem um valor inválido.",
	CodeRequestBodyInvalid:                 "Não foi possível ler o corpo da requisição.",
	CodeUnauthenticated:                    "Entre para continuar.",
	CodePermissionDenied:                   "Você não tem permissão para isso.",
	CodeNotFound:                           "O registro solicitado não foi encontrado.",
	CodeAlreadyExists:                      "O registro já existe.",
	CodeUnavailable:                        "O serviço está temporariamente indisponível. Tente novamente.",
}
