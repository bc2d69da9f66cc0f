package chatbot

import (
	"context"
	"encoding/json"
	"fmt"

	"suitup-be/internal/apperr"
	"suitup-be/internal/brand"
	"suitup-be/internal/product"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
)

const (
	toolRecommendations = "get_product_recommendations"
	toolBrandInfo       = "get_brand_info"
	toolProductDetails  = "get_product_details"
	toolListBrands      = "list_all_brands"
	toolCheapest        = "get_cheapest_product"
	toolMostExpensive   = "get_most_expensive_product"
)

// Catalog is the read-only slice of the product service the assistant uses.
type Catalog interface {
	Recommend(ctx context.Context, opts product.SearchOptions) ([]*product.Product, error)
	ListByBrand(ctx context.Context, brandID string) (*brand.Brand, []*product.Product, error)
	Details(ctx context.Context, key string) (*product.Product, error)
	Cheapest(ctx context.Context, brandName string) (*product.Product, error)
	MostExpensive(ctx context.Context, brandName string) (*product.Product, error)
}

type Brands interface {
	List(ctx context.Context) ([]*brand.Brand, error)
	FindByName(ctx context.Context, name string) (*brand.Brand, error)
}

func stringParam(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectParams(props map[string]any, required ...string) map[string]any {
	p := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		p["required"] = required
	}
	return p
}

var toolSpecs = []openai.Tool{
	{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{
		Name:        toolRecommendations,
		Description: "Search the SuitUp catalog for products matching a style, occasion, keyword or brand, optionally under a maximum price.",
		Parameters: objectParams(map[string]any{
			"query":    stringParam("Keywords such as 'navy wedding suit' or 'silk tie'"),
			"brand":    stringParam("Restrict results to this brand name"),
			"maxPrice": map[string]any{"type": "number", "description": "Maximum price in USD"},
			"limit":    map[string]any{"type": "integer", "description": "How many products to return, at most 10"},
		}),
	}},
	{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{
		Name:        toolBrandInfo,
		Description: "Get a brand and the products it sells.",
		Parameters: objectParams(map[string]any{
			"brandName": stringParam("Name of the brand"),
		}, "brandName"),
	}},
	{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{
		Name:        toolProductDetails,
		Description: "Get full details of one product by id or by name.",
		Parameters: objectParams(map[string]any{
			"productId":   stringParam("Product id"),
			"productName": stringParam("Product name, used when the id is unknown"),
		}),
	}},
	{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{
		Name:        toolListBrands,
		Description: "List every brand available on SuitUp.",
		Parameters:  objectParams(map[string]any{}),
	}},
	{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{
		Name:        toolCheapest,
		Description: "Find the cheapest product, optionally within one brand.",
		Parameters: objectParams(map[string]any{
			"brandName": stringParam("Optional brand name"),
		}),
	}},
	{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{
		Name:        toolMostExpensive,
		Description: "Find the most expensive product, optionally within one brand.",
		Parameters: objectParams(map[string]any{
			"brandName": stringParam("Optional brand name"),
		}),
	}},
}

// productView is what the model sees of a product.
type productView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        string   `json:"price"`
	Stock        int      `json:"stock"`
	InStock      bool     `json:"inStock"`
	Brand        string   `json:"brand,omitempty"`
	ImageURL     []string `json:"imageUrl,omitempty"`
	VirtualTryOn bool     `json:"virtualTryOn"`
}

func viewProduct(p *product.Product) productView {
	v := productView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		Stock:        p.Stock,
		InStock:      p.InStock(),
		ImageURL:     p.ImageURL,
		VirtualTryOn: p.VirtualTryOnFile != nil,
	}
	if p.Brand != nil {
		v.Brand = p.Brand.Name
	}
	return v
}

func viewProducts(ps []*product.Product) []productView {
	out := make([]productView, len(ps))
	for i, p := range ps {
		out[i] = viewProduct(p)
	}
	return out
}

type toolError struct {
	Error string `json:"error"`
}

type recommendationArgs struct {
	Query    string           `json:"query"`
	Brand    string           `json:"brand"`
	MaxPrice *decimal.Decimal `json:"maxPrice"`
	Limit    int              `json:"limit"`
}

type brandArgs struct {
	BrandName string `json:"brandName"`
}

type detailsArgs struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

type toolRunner struct {
	catalog Catalog
	brands  Brands
}

// run executes one tool call and returns its JSON result. Failures become
// an error payload for the model instead of failing the whole request.
func (t *toolRunner) run(ctx context.Context, call openai.ToolCall) string {
	result, err := t.dispatch(ctx, call.Function.Name, call.Function.Arguments)
	if err != nil {
		result = toolError{Error: apperr.MessageOf(err)}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return `{"error":"could not encode tool result"}`
	}
	return string(out)
}

func decodeArgs(raw string, dst any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return apperr.Invalid(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

func (t *toolRunner) dispatch(ctx context.Context, name, rawArgs string) (any, error) {
	switch name {
	case toolRecommendations:
		var args recommendationArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		products, err := t.catalog.Recommend(ctx, product.SearchOptions{
			Query:     args.Query,
			BrandName: args.Brand,
			MaxPrice:  args.MaxPrice,
			Limit:     args.Limit,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"products": viewProducts(products)}, nil

	case toolBrandInfo:
		var args brandArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		b, err := t.brands.FindByName(ctx, args.BrandName)
		if err != nil {
			return nil, err
		}
		_, products, err := t.catalog.ListByBrand(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"brand": b, "products": viewProducts(products)}, nil

	case toolProductDetails:
		var args detailsArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		key := args.ProductID
		if key == "" {
			key = args.ProductName
		}
		p, err := t.catalog.Details(ctx, key)
		if err != nil {
			return nil, err
		}
		return viewProduct(p), nil

	case toolListBrands:
		brands, err := t.brands.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"brands": brands}, nil

	case toolCheapest, toolMostExpensive:
		var args brandArgs
		if err := decodeArgs(rawArgs, &args); err != nil {
			return nil, err
		}
		lookup := t.catalog.Cheapest
		if name == toolMostExpensive {
			lookup = t.catalog.MostExpensive
		}
		p, err := lookup(ctx, args.BrandName)
		if err != nil {
			return nil, err
		}
		return viewProduct(p), nil

	default:
		return nil, apperr.Invalid(fmt.Sprintf("unknown tool: %s", name))
	}
}
