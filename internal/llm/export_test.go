package llm

// FirstJSONObject exposes the free-text salvage parser to tests.
var FirstJSONObject = firstJSONObject
