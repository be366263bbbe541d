package http

import (
	"strings"
	"time"

	"despesas/internal/core"
	"despesas/internal/query"
)

// Wire types follow the reference API: pt-BR field names, amounts as plain
// two-decimal numbers, dates RFC3339.

type expenseRequest struct {
	Descricao   string     `json:"descricao"`
	Valor       core.Money `json:"valor"`
	Data        string     `json:"data"`
	Observacao  *string    `json:"observacao"`
	CategoriaID int64      `json:"categoriaId"`
	CartaoID    *int64     `json:"cartaoId"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	date, err := parseDate(req.Data)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		Description: strings.TrimSpace(req.Descricao),
		Amount:      req.Valor,
		Date:        date,
		CategoryID:  req.CategoriaID,
		CardID:      req.CartaoID,
	}
	if req.Observacao != nil {
		e.Note = strings.TrimSpace(*req.Observacao)
	}
	return e, nil
}

// parseDate accepts full RFC3339 timestamps and bare dates. Everything is
// normalized to UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.NewValidationError("data", "required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, core.NewValidationError("data", "invalid date")
}

type expenseResponse struct {
	ID              int64      `json:"id"`
	Descricao       string     `json:"descricao"`
	Valor           core.Money `json:"valor"`
	Data            time.Time  `json:"data"`
	Observacao      *string    `json:"observacao"`
	ComprovanteNome *string    `json:"comprovanteNome"`
	ComprovanteURL  *string    `json:"comprovanteUrl"`
	CategoriaID     int64      `json:"categoriaId"`
	CategoriaNome   string     `json:"categoriaNome"`
	CategoriaCor    string     `json:"categoriaCor"`
	CartaoID        *int64     `json:"cartaoId"`
	CartaoNome      *string    `json:"cartaoNome"`
	CriadoEm        time.Time  `json:"criadoEm"`
	AtualizadoEm    *time.Time `json:"atualizadoEm,omitempty"`
}

func toExpenseResponse(e *core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:            e.ID,
		Descricao:     e.Description,
		Valor:         e.Amount,
		Data:          e.Date,
		CategoriaID:   e.CategoryID,
		CategoriaNome: e.CategoryName,
		CategoriaCor:  e.CategoryColor,
		CartaoID:      e.CardID,
		CartaoNome:    e.CardName,
		CriadoEm:      e.CreatedAt,
		AtualizadoEm:  e.UpdatedAt,
	}
	if e.Note != "" {
		note := e.Note
		resp.Observacao = &note
	}
	if e.HasReceipt() {
		name, url := e.Receipt.Name, e.Receipt.URL
		resp.ComprovanteNome = &name
		resp.ComprovanteURL = &url
	}
	return resp
}

type pageResponse struct {
	Items        []expenseResponse `json:"items"`
	TotalItems   int               `json:"totalItems"`
	PaginaAtual  int               `json:"paginaAtual"`
	TotalPaginas int               `json:"totalPaginas"`
}

func toPageResponse(p query.Page) pageResponse {
	items := make([]expenseResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, toExpenseResponse(&p.Items[i]))
	}
	return pageResponse{
		Items:        items,
		TotalItems:   p.TotalItems,
		PaginaAtual:  p.CurrentPage,
		TotalPaginas: p.TotalPages,
	}
}

type categoryRequest struct {
	Nome  string  `json:"nome"`
	Cor   *string `json:"cor"`
	Icone *string `json:"icone"`
	Ativo bool    `json:"ativo"`
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Cor   string `json:"cor"`
	Icone string `json:"icone"`
	Ativo bool   `json:"ativo"`
}

func toCategoryResponse(c *core.Category) categoryResponse {
	return categoryResponse{
		ID:    c.ID,
		Nome:  c.Name,
		Cor:   c.Color,
		Icone: c.Icon,
		Ativo: c.Active,
	}
}

type cardRequest struct {
	Nome   string      `json:"nome"`
	Limite *core.Money `json:"limite"`
	Ativo  bool        `json:"ativo"`
}

type cardResponse struct {
	ID     int64       `json:"id"`
	Nome   string      `json:"nome"`
	Limite *core.Money `json:"limite"`
	Ativo  bool        `json:"ativo"`
}

func toCardResponse(c *core.Card) cardResponse {
	return cardResponse{
		ID:     c.ID,
		Nome:   c.Name,
		Limite: c.Limit,
		Ativo:  c.Active,
	}
}
