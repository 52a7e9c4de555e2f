package search

import (
	"container/heap"
	"math"
	"strings"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
)

// Default BM25 parameters. k1 controls term-frequency saturation, b
// controls document-length normalization.
const (
	DefaultK = 1.2
	DefaultB = 0.75
)

// Result is one ranked document from a search.
type Result struct {
	Row   int     // row of the matching document in the matrix
	Score float64 // normalized to [0,1] within the result set
}

// Bm25 is an in-memory BM25 ranking model over a fixed document set.
// Build constructs a weighted term-document CSR matrix; Search turns a
// query into a sparse vector and ranks documents by their product.
type Bm25 struct {
	K, B float64

	m            *sparse.CSR
	terms        []string
	termIndex    map[string]int
	invertedList map[string][]*documentWrapper
	maxResults   int
}

type documentWrapper struct {
	ctr int
	d   *Document
}

// NewBm25 creates an empty model with the given parameters.
func NewBm25(b, k float64) *Bm25 {
	return &Bm25{
		B:            b,
		K:            k,
		terms:        make([]string, 0),
		termIndex:    make(map[string]int),
		invertedList: make(map[string][]*documentWrapper),
		maxResults:   10,
	}
}

// SetMaxResults caps how many documents Search returns.
func (bm *Bm25) SetMaxResults(n int) {
	if n > 0 {
		bm.maxResults = n
	}
}

// Build indexes the documents: inverted list first, then the weighted
// term-document matrix.
func (bm *Bm25) Build(documents []*Document) {
	bm.addDocuments(documents)

	numberOfWords := len(bm.invertedList)
	numberOfDocuments := len(documents)
	if numberOfDocuments == 0 || numberOfWords == 0 {
		return
	}

	dokMat := sparse.NewDOK(numberOfDocuments, numberOfWords)

	n := float64(numberOfDocuments)
	avdl := avgDocumentLength(documents)

	for termID, term := range bm.terms {
		df := float64(len(bm.invertedList[term]))
		idf := math.Log2(n / df)

		for _, wrapper := range bm.invertedList[term] {
			val := float64(wrapper.ctr)
			alpha := 1 - bm.B + (bm.B * float64(len(wrapper.d.Terms)) / avdl)
			tf := 1.0
			if bm.K > 0 {
				tf = val * (1 + (1 / bm.K)) / (alpha + (val / bm.K))
			}

			dokMat.Set(wrapper.d.Row, termID, tf*idf)
		}
	}

	bm.m = dokMat.ToCSR()
}

func (bm *Bm25) addDocuments(documents []*Document) {
	for _, document := range documents {
		for _, term := range document.Terms {
			term = strings.ToLower(term)
			postings, ok := bm.invertedList[term]
			if !ok {
				bm.invertedList[term] = []*documentWrapper{{d: document, ctr: 1}}
				bm.termIndex[term] = len(bm.terms)
				bm.terms = append(bm.terms, term)
				continue
			}
			last := postings[len(postings)-1]
			if last.d.ID == document.ID {
				last.ctr++
			} else {
				bm.invertedList[term] = append(postings, &documentWrapper{d: document, ctr: 1})
			}
		}
	}
}

// Search ranks documents against the query terms and returns up to
// maxResults rows, best first. Scores are normalized to [0,1] within
// the result set so callers can treat them as relative relevance.
func (bm *Bm25) Search(terms []string) []Result {
	if bm.m == nil {
		return nil
	}

	searchVec := bm.buildSearchVec(terms)
	if searchVec.NNZ() == 0 {
		return nil
	}

	var searchResult sparse.CSR
	searchResult.Mul(bm.m, searchVec)

	pq := make(priorityQueue, 0, searchResult.NNZ())
	rows, _ := searchResult.Dims()
	for i := 0; i < rows; i++ {
		score := searchResult.At(i, 0)
		if score == 0 {
			continue
		}
		pq = append(pq, &rankedItem{row: i, priority: score, index: len(pq)})
	}

	heap.Init(&pq)

	maxLength := bm.maxResults
	if pq.Len() < maxLength {
		maxLength = pq.Len()
	}

	results := make([]Result, maxLength)
	scores := make([]float64, maxLength)
	for i := 0; i < maxLength; i++ {
		item := heap.Pop(&pq).(*rankedItem)
		results[i] = Result{Row: item.row, Score: item.priority}
		scores[i] = item.priority
	}

	normalizeScores(results, scores)
	return results
}

// SearchFromString tokenizes the query and searches.
func (bm *Bm25) SearchFromString(query string) []Result {
	return bm.Search(Tokenize(query))
}

func (bm *Bm25) buildSearchVec(terms []string) *sparse.CSC {
	unique := make(map[string]bool, len(terms))
	for _, t := range terms {
		unique[strings.ToLower(t)] = true
	}

	searchVec := sparse.NewDOK(len(bm.terms), 1).ToCSC()
	for term := range unique {
		if idx, ok := bm.termIndex[term]; ok {
			searchVec.Set(idx, 0, 1)
		}
	}
	return searchVec
}

// normalizeScores maps raw scores onto [0,1] relative to the best hit.
func normalizeScores(results []Result, scores []float64) {
	if len(scores) == 0 {
		return
	}
	max := floats.Max(scores)
	if max <= 0 {
		return
	}
	floats.Scale(1/max, scores)
	for i := range results {
		results[i].Score = scores[i]
	}
}

func avgDocumentLength(documents []*Document) (avg float64) {
	if len(documents) == 0 {
		return 0
	}
	for _, document := range documents {
		avg += float64(len(document.Terms))
	}
	return avg / float64(len(documents))
}

// rankedItem / priorityQueue implement a max-heap on score for top-k
// extraction.
type rankedItem struct {
	row      int
	priority float64
	index    int
}

type priorityQueue []*rankedItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].priority > pq[j].priority
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*rankedItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
