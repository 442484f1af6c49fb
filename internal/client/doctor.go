package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// GetDoctors fetches every doctor. Failures come back as a failed result
// with an empty, renderable item list.
func (c *Client) GetDoctors(ctx context.Context) model.ListResult[model.Doctor] {
	return c.listDoctors(ctx, request{op: "get_doctors", method: http.MethodGet, path: []string{"doctor"}})
}

// FilterDoctors narrows the list by name, time slot and specialty. A filter
// with no criterion issues exactly the same request as GetDoctors.
func (c *Client) FilterDoctors(ctx context.Context, filter model.DoctorFilter) model.ListResult[model.Doctor] {
	f := filter.Normalize()
	if f.IsEmpty() {
		return c.GetDoctors(ctx)
	}
	return c.listDoctors(ctx, request{
		op:     "filter_doctors",
		method: http.MethodGet,
		path:   []string{"doctor", "filter"},
		query:  url.Values{"name": {f.Name}, "time": {f.Time}, "specialty": {f.Specialty}},
	})
}

func (c *Client) listDoctors(ctx context.Context, req request) model.ListResult[model.Doctor] {
	resp, err := c.do(ctx, req)
	if err != nil {
		return model.ListFailure[model.Doctor](err)
	}

	var doctors []model.Doctor
	if err := decodeList(resp, "doctors", &doctors); err != nil {
		c.log.Error(err, "unexpected doctor list payload", "operation", req.op)
		return model.ListFailure[model.Doctor](err)
	}
	return model.ListOf(doctors)
}

// SaveDoctor creates a doctor with the admin's token.
func (c *Client) SaveDoctor(ctx context.Context, doctor model.NewDoctor, token string) model.WriteResult {
	resp, err := c.do(ctx, request{
		op:     "save_doctor",
		method: http.MethodPost,
		path:   []string{"doctor"},
		body:   doctor,
		token:  token,
	})
	if err != nil {
		return model.Failed(writeFailure(err, "Failed to save doctor due to a network or server error."))
	}

	var saved interface{}
	if err := resp.decode(&saved); err != nil {
		return model.Failed(writeFailure(err, "Failed to save doctor due to a network or server error."))
	}
	return model.Succeeded("Doctor saved successfully.", saved)
}

// DeleteDoctor removes a doctor. A 204 answer gets a synthesized message.
func (c *Client) DeleteDoctor(ctx context.Context, id int64, token string) model.WriteResult {
	resp, err := c.do(ctx, request{
		op:     "delete_doctor",
		method: http.MethodDelete,
		path:   []string{"doctor", strconv.FormatInt(id, 10)},
		token:  token,
	})
	if err != nil {
		return model.Failed(writeFailure(err, "Failed to delete doctor due to a network or server error."))
	}

	msg := fmt.Sprintf("Doctor ID %d deleted successfully.", id)
	if resp.status != http.StatusNoContent {
		if m := serverMessage(resp.body); m != "" {
			msg = m
		}
	}
	return model.Succeeded(msg, map[string]int64{"id": id})
}
