// Package advisor formats store data into prompts for the Gemini
// generateContent API and returns prose for the consulting chat and
// for product marketing copy. Every external failure is absorbed into
// a fixed fallback reply so the caller's screen always has something
// to render.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gxbrielaramalho/MeuMercado/internal/market"
)

const (
	fallbackCopy     = "Ótima opção para você!"
	emptyCopy        = "Descrição não disponível no momento."
	fallbackAnalysis = "Erro ao conectar com a IA consultora. Verifique sua chave de API ou conexão."
	emptyAnalysis    = "Não consegui analisar os dados no momento."

	// recentSalesSample bounds how much history goes into the prompt.
	recentSalesSample = 50
)

type Client struct {
	httpc   *http.Client
	baseURL string
	model   string
	apiKey  string
	log     zerolog.Logger
}

func New(baseURL, model, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		log:     log,
	}
}

// GenerateMarketingCopy asks for a short promotional description
// (target 150 chars, with emoji) for a product name/category.
func (c *Client) GenerateMarketingCopy(ctx context.Context, productName string, category market.Category) string {
	prompt := fmt.Sprintf(`Escreva uma descrição de marketing curta, atraente e vendedora (máximo 150 caracteres) para um produto de mini mercado.
Produto: %s
Categoria: %s
Use emojis apropriados.`, productName, category)

	text, err := c.generate(ctx, prompt, "")
	if err != nil {
		c.log.Warn().Err(err).Str("product", productName).Msg("marketing copy request failed")
		return fallbackCopy
	}
	if text == "" {
		return emptyCopy
	}
	return text
}

type saleSummary struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Items string          `json:"items"`
}

// AnalyzeBusinessData sends the user's question against a system
// context holding the low-stock list and a bounded recent-sales sample.
func (c *Client) AnalyzeBusinessData(ctx context.Context, sales []market.Sale, products []market.Product, question string) string {
	if len(sales) > recentSalesSample {
		sales = sales[:recentSalesSample]
	}
	recent := make([]saleSummary, 0, len(sales))
	for _, s := range sales {
		names := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		recent = append(recent, saleSummary{
			Date:  s.Timestamp.Format("02/01/2006"),
			Total: s.Total,
			Items: strings.Join(names, ", "),
		})
	}

	var lowStock []string
	for _, p := range products {
		if p.Stock < market.LowStockThreshold {
			lowStock = append(lowStock, p.Name)
		}
	}
	lowStockLine := "Nenhum"
	if len(lowStock) > 0 {
		lowStockLine = strings.Join(lowStock, ", ")
	}

	recentJSON, _ := json.Marshal(recent)
	system := fmt.Sprintf(`Você é um consultor especialista para um dono de mini mercado chamado "MercadoPro".
Sua missão é ajudar a aumentar o lucro, reduzir perdas e melhorar o marketing.

DADOS DO NEGÓCIO EM TEMPO REAL:
- Produtos com estoque baixo (Abaixo de %d un): %s
- Amostra das últimas vendas: %s

DIRETRIZES:
- Seja conciso e direto.
- Use formatação simples (bullet points) quando útil.
- Se perguntarem sobre dados que não existem, explique que precisa de mais histórico.`,
		market.LowStockThreshold, lowStockLine, recentJSON)

	text, err := c.generate(ctx, question, system)
	if err != nil {
		c.log.Warn().Err(err).Msg("business analysis request failed")
		return fallbackAnalysis
	}
	if text == "" {
		return emptyAnalysis
	}
	return text
}

// ---- generateContent wire types ----

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt, system string) (string, error) {
	reqBody := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
