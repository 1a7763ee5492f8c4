package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Métricas de negócio
	ActiveChargingSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csms_active_charging_sessions",
		Help: "Número de sessões de carregamento ativas",
	})

	EnergyDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csms_energy_delivered_kwh_total",
		Help: "Total de energia entregue em kWh",
	})

	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csms_settlements_total",
		Help: "Total de liquidações de sessão",
	}, []string{"status"})

	SettlementAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csms_settlement_amount_total",
		Help: "Valor total debitado em liquidações",
	})

	AuthorizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csms_authorizations_total",
		Help: "Total de autorizações por resultado",
	}, []string{"status"})

	// Métricas de infraestrutura
	OCPPMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csms_ocpp_messages_total",
		Help: "Total de mensagens OCPP",
	}, []string{"action", "direction"})

	OCPPCallErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csms_ocpp_call_errors_total",
		Help: "Total de CallErrors devolvidos",
	}, []string{"action", "code"})

	ConnectedChargePoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csms_connected_charge_points",
		Help: "Pontos de carga com sessão WebSocket ativa",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csms_notifications_sent_total",
		Help: "Total de notificações push enviadas",
	}, []string{"kind", "status"})
)
