package appwrite

import "encoding/json"

// Query はAppwriteのクエリ。JSONにエンコードして queries[] パラメータで送る。
type Query struct {
	// Method は "equal" や "orderDesc" などのクエリ種別。
	Method string `json:"method"`
	// Attribute は対象の属性名。
	Attribute string `json:"attribute,omitempty"`
	// Values は比較値。
	Values []any `json:"values,omitempty"`
}

// Equal は属性が値のいずれかと等しいドキュメントに絞り込む。
func Equal(attribute string, values ...any) Query {
	return Query{Method: "equal", Attribute: attribute, Values: values}
}

// OrderAsc は属性の昇順に並べる。
func OrderAsc(attribute string) Query {
	return Query{Method: "orderAsc", Attribute: attribute}
}

// OrderDesc は属性の降順に並べる。
func OrderDesc(attribute string) Query {
	return Query{Method: "orderDesc", Attribute: attribute}
}

// String はクエリのJSON表現を返す。
func (q Query) String() string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}
