// Package feature_extraction はテキストから特徴量行列を構成する変換器を提供します。
package feature_extraction

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/mat"

	"github.com/sahana-alt/ML1Blogs/core/model"
	"github.com/sahana-alt/ML1Blogs/pkg/errors"
)

// CountVectorizer は文書集合を単語出現回数の行列に変換する
// scikit-learnのCountVectorizerと同様に、語彙の学習と
// 文書 → 出現回数行列への変換を行う
//
// トークン化: 小文字化した上で英数字以外の文字で分割する
// MultinomialNBによるスパム分類の前処理として使用する
type CountVectorizer struct {
	model.BaseEstimator

	// Vocabulary_ は学習された語彙（単語 → 列番号）
	Vocabulary_ map[string]int

	// FeatureNames_ は列番号順の単語リスト
	FeatureNames_ []string

	// Lowercase はトークン化前に小文字化するかどうか (デフォルト: true)
	Lowercase bool

	// MinTokenLength はトークンとして採用する最小文字数 (デフォルト: 1)
	MinTokenLength int
}

// CountVectorizerOption はCountVectorizerの設定オプション
type CountVectorizerOption func(*CountVectorizer)

// WithLowercase は小文字化の有無を設定
func WithLowercase(lowercase bool) CountVectorizerOption {
	return func(cv *CountVectorizer) {
		cv.Lowercase = lowercase
	}
}

// WithMinTokenLength は採用する最小トークン長を設定
func WithMinTokenLength(n int) CountVectorizerOption {
	return func(cv *CountVectorizer) {
		cv.MinTokenLength = n
	}
}

// NewCountVectorizer は新しいCountVectorizerを作成する
func NewCountVectorizer(options ...CountVectorizerOption) *CountVectorizer {
	cv := &CountVectorizer{
		Lowercase:      true,
		MinTokenLength: 1,
	}
	for _, opt := range options {
		opt(cv)
	}
	return cv
}

// tokenize は文書をトークン列に分割する
func (cv *CountVectorizer) tokenize(doc string) []string {
	if cv.Lowercase {
		doc = strings.ToLower(doc)
	}

	tokens := strings.FieldsFunc(doc, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	if cv.MinTokenLength <= 1 {
		return tokens
	}

	kept := tokens[:0]
	for _, t := range tokens {
		if len(t) >= cv.MinTokenLength {
			kept = append(kept, t)
		}
	}
	return kept
}

// Fit は文書集合から語彙を学習する
// 語彙の列番号は単語の辞書順で割り当てられ、実行のたびに同じになる
func (cv *CountVectorizer) Fit(documents []string) error {
	if len(documents) == 0 {
		return errors.NewModelError("CountVectorizer.Fit", "empty documents", errors.ErrEmptyData)
	}

	seen := make(map[string]bool)
	for _, doc := range documents {
		for _, tok := range cv.tokenize(doc) {
			seen[tok] = true
		}
	}

	if len(seen) == 0 {
		return errors.NewValueError("CountVectorizer.Fit", "no tokens found in documents")
	}

	cv.FeatureNames_ = make([]string, 0, len(seen))
	for tok := range seen {
		cv.FeatureNames_ = append(cv.FeatureNames_, tok)
	}
	sort.Strings(cv.FeatureNames_)

	cv.Vocabulary_ = make(map[string]int, len(cv.FeatureNames_))
	for i, tok := range cv.FeatureNames_ {
		cv.Vocabulary_[tok] = i
	}

	cv.SetFitted()
	return nil
}

// Transform は文書集合を n_documents × n_vocabulary の出現回数行列に変換する
// 語彙に含まれない単語は無視する
func (cv *CountVectorizer) Transform(documents []string) (*mat.Dense, error) {
	if !cv.IsFitted() {
		return nil, errors.NewNotFittedError("CountVectorizer", "Transform")
	}

	counts := mat.NewDense(len(documents), len(cv.FeatureNames_), nil)
	for i, doc := range documents {
		for _, tok := range cv.tokenize(doc) {
			if j, ok := cv.Vocabulary_[tok]; ok {
				counts.Set(i, j, counts.At(i, j)+1)
			}
		}
	}

	return counts, nil
}

// FitTransform は語彙の学習と変換を同時に実行する
func (cv *CountVectorizer) FitTransform(documents []string) (*mat.Dense, error) {
	if err := cv.Fit(documents); err != nil {
		return nil, err
	}
	return cv.Transform(documents)
}

// VocabularySize は学習された語彙数を返す
func (cv *CountVectorizer) VocabularySize() int {
	return len(cv.FeatureNames_)
}

// String はベクトライザの文字列表現を返す
func (cv *CountVectorizer) String() string {
	if !cv.IsFitted() {
		return fmt.Sprintf("CountVectorizer(lowercase=%t)", cv.Lowercase)
	}
	return fmt.Sprintf("CountVectorizer(lowercase=%t, vocabulary_size=%d)", cv.Lowercase, len(cv.FeatureNames_))
}
