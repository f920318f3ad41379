package models

// Token — морфема с тегом части речи и позициями символов во входной строке.
type Token struct {
	Morph      string `json:"morph"`
	POS        string `json:"pos"`
	BeginIndex int    `json:"beginIndex"`
	EndIndex   int    `json:"endIndex"`
}

type TokenizeRequest struct {
	String *string `json:"string" validate:"required"`
}

type TokenizeResponse struct {
	Tokens []Token `json:"tokens"`
}
