package remote

import "github.com/mmcdole/roster/internal/domain"

// listResponse is the envelope of a collection read with odata=nometadata
type listResponse struct {
	Value []domain.Item `json:"value"`
}

// errorResponse is the body the list service returns on failure
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message struct {
			Lang  string `json:"lang"`
			Value string `json:"value"`
		} `json:"message"`
	} `json:"odata.error"`
}

// DecodeItems parses a raw read payload into items. A collection read yields
// the "value" array; a by-id read yields a single item.
func DecodeItems(payload []byte, list bool) ([]domain.Item, error) {
	if list {
		var resp listResponse
		if err := unmarshal(payload, &resp); err != nil {
			return nil, err
		}
		return resp.Value, nil
	}
	var item domain.Item
	if err := unmarshal(payload, &item); err != nil {
		return nil, err
	}
	return []domain.Item{item}, nil
}
