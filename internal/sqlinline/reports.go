// Package sqlinline holds every SQL statement the repositories execute.
// Each constant starts with a "--sql <uuid>" audit marker so statements can
// be traced back from query logs; internal/tools/sqllint enforces the convention.
package sqlinline

const QSelectOrderHeader = `--sql b6613e57-25ee-4392-b395-07c5cf65efb4
select o.id, o.placed_at, o.currency, u.display_name, u.email
from orders o
join users u on u.id = o.user_id
where o.id = $1;
`

const QSelectOrderLines = `--sql b4c3bf36-991f-44a3-b0fd-f40471ed8c16
select p.name, oi.quantity, oi.unit_price_cents
from order_items oi
join products p on p.id = oi.product_id
where oi.order_id = $1
order by p.name;
`

const QAggregateDailySales = `--sql e9525d1d-2907-45cc-acc3-eac8ac682b21
select count(distinct o.id),
       coalesce(sum(oi.quantity), 0),
       coalesce(sum(oi.quantity * oi.unit_price_cents), 0)
from orders o
join order_items oi on oi.order_id = o.id
where o.status = 'completed'
  and o.placed_at::date = $1::date;
`

const QSelectTopProducts = `--sql e7b6b3ea-0ecb-4abd-8778-e00d6d5694c9
select p.name,
       sum(oi.quantity),
       sum(oi.quantity * oi.unit_price_cents)
from orders o
join order_items oi on oi.order_id = o.id
join products p on p.id = oi.product_id
where o.status = 'completed'
  and o.placed_at::date = $1::date
group by p.name
order by sum(oi.quantity * oi.unit_price_cents) desc
limit 10;
`
