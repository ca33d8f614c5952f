package core

import "math"

// 向量维度，全系统固定顺序。
const (
	DimSpicy = iota
	DimSweet
	DimSalty
	DimSour
	DimOily
	DimFresh
	DimPriceLevel
	DimCalorieLevel
	DimPopularity

	VectorDims
)

// DimensionNames 与 Dim* 常量一一对应。
var DimensionNames = [VectorDims]string{
	"spicy", "sweet", "salty", "sour", "oily", "fresh",
	"price_level", "calorie_level", "popularity",
}

// Vector 是菜品特征向量与用户画像向量的共同形态。
type Vector [VectorDims]float64

// Dot 点积。
func (v Vector) Dot(o Vector) float64 {
	var s float64
	for i := range v {
		s += v[i] * o[i]
	}
	return s
}

// Norm L2 范数。
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsZero 判断是否全零。
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Cosine 计算余弦相似度；任一向量范数为 0 时返回 0。
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

// Map 以维度名导出，供 CEL 表达式中的 item.features 与日志使用。
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, VectorDims)
	for i, name := range DimensionNames {
		m[name] = v[i]
	}
	return m
}
