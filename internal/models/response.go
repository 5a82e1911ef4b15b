package models

import "time"

// CacheEntry is the persisted snapshot of the last successful search.
type CacheEntry struct {
	CapturedAt   time.Time    `json:"captured_at"`
	SearchParams SearchParams `json:"search_params"`
	Offers       []Offer      `json:"offers"`
	PriceLines   []PricedLine `json:"price_lines"`
	Scope        Scope        `json:"scope"`
}

// VooCotacao is the record handed to the quotation screens for each
// selected line.
type VooCotacao struct {
	ID           string          `json:"id"`
	Airline      string          `json:"companhia"`
	FlightNumber string          `json:"numero_voo"`
	DepartureAt  time.Time       `json:"data_hora_partida"`
	ArrivalAt    time.Time       `json:"data_hora_chegada"`
	Origin       string          `json:"origem"`
	Destination  string          `json:"destino"`
	Duration     string          `json:"duracao"`
	FareLabel    string          `json:"classe"`
	HasBaggage   bool            `json:"bagagem_despachada"`
	Total        float64         `json:"preco_total"`
	Direction    string          `json:"direcao"`
	Connections  []Connection    `json:"conexoes,omitempty"`
	Breakdown    *PriceBreakdown `json:"detalhes_preco,omitempty"`
	Source       *RawLeg         `json:"dados_originais,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}
