package builders

import (
	"fmt"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/config"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/filter"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pipeline"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/conv"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/rank"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/recall"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/rerank"
)

func init() {
	config.Register("recall.catalog", BuildCatalogNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.vsm", BuildVSMNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.mmr", BuildMMRNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func BuildCatalogNode(map[string]any) (pipeline.Node, error) {
	return &recall.CatalogRecall{}, nil
}

func BuildVSMNode(map[string]any) (pipeline.Node, error) {
	return &rank.VSMNode{}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n, err := conv.Section(cfg).Int("n", core.CandidateCap)
	if err != nil {
		return nil, fmt.Errorf("rerank.topn: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: n}, nil
}

func BuildMMRNode(cfg map[string]any) (pipeline.Node, error) {
	sec := conv.Section(cfg)
	k, err := sec.Int("k", core.DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("rerank.mmr: %w", err)
	}
	if k <= 0 {
		return nil, fmt.Errorf("rerank.mmr: k must be > 0, got %d", k)
	}
	alpha, err := sec.Float("alpha", core.DefaultAlpha)
	if err != nil {
		return nil, fmt.Errorf("rerank.mmr: %w", err)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("rerank.mmr: alpha must be in [0,1], got %v", alpha)
	}
	return &rerank.MMRNode{K: k, Alpha: alpha}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	n, err := conv.Section(cfg).Int("n", 0)
	if err != nil {
		return nil, fmt.Errorf("rerank.diversity: %w", err)
	}
	return &rerank.Diversity{N: n}, nil
}

// BuildFilterNode 支持的过滤器：
//   - cooldown
//   - blacklist：dish_ids（内存名单）
//   - expr：rules（CEL 表达式列表）
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	sections, err := conv.Section(cfg).Sections("filters")
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	filters := make([]filter.Filter, 0, len(sections))
	for _, sec := range sections {
		filterType, err := sec.String("type", "")
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		switch filterType {
		case "cooldown":
			filters = append(filters, &filter.CooldownFilter{})
		case "blacklist":
			ids, err := sec.Strings("dish_ids")
			if err != nil {
				return nil, fmt.Errorf("blacklist filter: %w", err)
			}
			filters = append(filters, filter.NewBlacklistFilter(ids, nil, ""))
		case "expr":
			rules, err := sec.Strings("rules")
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			f, err := filter.NewExprFilter(rules...)
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %q", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
