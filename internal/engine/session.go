package engine

import "log/slog"

// logout ends the session and goes home whatever the server says.
func (p *Page) logout() {
	ep := p.eng.endpoints
	p.request(methodLogout, ep.Logout, func(resp Response, err error) {
		if err != nil {
			p.eng.logger.Warn("logout request failed", slog.String("error", err.Error()))
		} else {
			p.eng.logger.Info("logged out", slog.Int("status", resp.Status))
		}
		if navErr := p.eng.navigator.Assign(p.navigationContext(), ep.Home); navErr != nil {
			p.eng.logger.Warn("navigate home failed", slog.String("error", navErr.Error()))
		}
	})
}
