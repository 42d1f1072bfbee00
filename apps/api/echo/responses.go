package echoapi

import "github.com/ikedalab/classinfo/core"

type (
	// ListResponse is the common list envelope: count always reflects the
	// returned slice, pagination only shows up on paginated endpoints.
	ListResponse struct {
		Success    bool           `json:"success"`
		Count      int            `json:"count"`
		Pagination *core.PageInfo `json:"pagination,omitempty"`
		Data       interface{}    `json:"data"`
	}

	ItemResponse struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data"`
	}

	SuccessResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	// RangeResponse is the date-range endpoints' envelope: the unpaginated
	// total rides at the top level next to the page descriptor.
	RangeResponse struct {
		Success    bool          `json:"success"`
		Count      int           `json:"count"`
		Total      int           `json:"total"`
		Pagination core.PageInfo `json:"pagination"`
		Data       interface{}   `json:"data"`
	}
)

func newListResponse(data interface{}, count int) ListResponse {
	return ListResponse{Success: true, Count: count, Data: data}
}

func newPagedResponse(data interface{}, count int, info core.PageInfo) ListResponse {
	return ListResponse{Success: true, Count: count, Pagination: &info, Data: data}
}

func newItemResponse(data interface{}) ItemResponse {
	return ItemResponse{Success: true, Data: data}
}

func newRangeResponse(data interface{}, count int, info core.PageInfo) RangeResponse {
	return RangeResponse{Success: true, Count: count, Total: info.Total, Pagination: info, Data: data}
}
