package core

import "github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/utils"

// Item 是链路中的一个候选菜品。Score 在 rank 之后为相关度（与查询向量的余弦相似度）。
type Item struct {
	ID     string
	Score  float64
	Vector Vector
	Dish   *Dish
	Labels utils.Labels
}

// 各 Node 写入的 Label key
const (
	LabelRecallSource     = "recall_source"
	LabelRankModel        = "rank_model"
	LabelRelevance        = "relevance"
	LabelMMRRank          = "mmr_rank"
	LabelDiversityPenalty = "diversity_penalty"
)

func NewItem(id string) *Item {
	return &Item{ID: id, Labels: utils.Labels{}}
}

// NewDishItem 用菜品及其特征向量构建候选。
func NewDishItem(d *Dish, v Vector) *Item {
	it := NewItem(d.ID)
	it.Dish = d
	it.Vector = v
	return it
}

func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = utils.Labels{}
	}
	it.Labels.Put(key, lbl)
}
