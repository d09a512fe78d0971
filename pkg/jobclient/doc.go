// Package jobclient talks to the CDAPS rendering job service.
//
// A rendering is a two-step job. [Client.Submit] posts the CX document and
// the algorithm's custom parameters:
//
//	POST {base}
//	{"algorithm":"cytojsimageexport","customParameters":{"--width":"2048","--height":"2048"},"data":[...]}
//
// and expects 202 Accepted with {"id": "<task id>"}. [Client.Fetch] then
// retrieves the rendered image:
//
//	GET {base}/raw/{id}
//
// and expects 200 OK with the binary artifact, which is returned as a stream.
//
// # Job lifecycle
//
// A [Job] moves from [StateUnsubmitted] to [StateSubmitted] on a 202, and
// from there to [StateComplete] or [StateFailed] on fetch. A submission
// answered with anything but 202 moves it straight to [StateFailed].
// Fetching, polling or deleting a job that was never submitted fails with
// FAILED_PRECONDITION without sending a request.
//
// # Polling
//
// The default [PollSingle] policy fetches exactly once, immediately after
// submission. [PollBackoff] first polls {base}/{id}/status with a doubling
// interval until the task reports complete or failed.
//
// # Errors
//
// Failures carry [errors.Code] values: SUBMISSION_FAILED and FETCH_FAILED for
// unexpected HTTP statuses (with an [errors.StatusError] cause holding the
// status and body), NETWORK_ERROR and TIMEOUT for transport failures. A
// cancelled parent context is returned unchanged.
package jobclient
