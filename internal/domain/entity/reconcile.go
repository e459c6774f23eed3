package entity

// DuplicateAudit records a non-exact name match that was accepted as the same
// person, kept for human review. Exact matches are not audited.
type DuplicateAudit struct {
	ManifestName      string `json:"manifestName" bson:"manifestName"`
	MatchedName       string `json:"matchedName" bson:"matchedName"`
	MatchedDocumentID string `json:"matchedDocumentId" bson:"matchedDocumentId"`
	SimilarityPercent int    `json:"similarityPercent" bson:"similarityPercent"`
}

// ReconcileResult summarizes one manifest batch. Every parsed entry lands in
// exactly one of Created or Found; Processed counts new flight links only, so
// re-running the same manifest yields Processed == 0.
type ReconcileResult struct {
	Processed  int              `json:"processed"`
	Created    int              `json:"created"`
	Found      int              `json:"found"`
	Duplicates []DuplicateAudit `json:"duplicates"`
	Summary    string           `json:"summary"`
}
