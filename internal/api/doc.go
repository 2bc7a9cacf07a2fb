// Package api exposes a vocabulary over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /metrics
//	GET  /vector?word=w
//	POST /vectors              {"words": [..]}
//	POST /find_similar_words   {"words": [..], "similarity_threshold"?: n, "limit"?: n}
//	POST /find_closest_words   alias of /find_similar_words
//
// Batch responses keep the cardinality and order of the request. A word
// outside the vocabulary is reported in place with an empty payload and
// "error": "word not found".
package api
